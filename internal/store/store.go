// Package store persists rank-run history. The store is operational
// bookkeeping only: ranking artifacts are reproducible from the registry
// and evidence ledger without it.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sydcare/carerank/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Preset string          `json:"preset,omitempty"`
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for run history.
type Store interface {
	CreateRun(ctx context.Context, run model.Run) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Config selects and configures a store backend.
type Config struct {
	Driver   string      `yaml:"driver" mapstructure:"driver"`
	DSN      string      `yaml:"dsn" mapstructure:"dsn"`
	Postgres *PoolConfig `yaml:"postgres" mapstructure:"postgres"`
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "carerank.db"
		}
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, cfg.DSN, cfg.Postgres)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
