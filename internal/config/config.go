// Package config loads application configuration from config.yaml and
// CARERANK_* environment variables, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sydcare/carerank/internal/model"
	"github.com/sydcare/carerank/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Store   store.Config  `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// PathsConfig locates the on-disk data the commands operate on.
type PathsConfig struct {
	Registry   string `yaml:"registry" mapstructure:"registry"`
	Corpus     string `yaml:"corpus" mapstructure:"corpus"`
	Events     string `yaml:"events" mapstructure:"events"`
	Assertions string `yaml:"assertions" mapstructure:"assertions"`
	Ledger     string `yaml:"ledger" mapstructure:"ledger"`
	Rankings   string `yaml:"rankings" mapstructure:"rankings"`
	Presets    string `yaml:"presets" mapstructure:"presets"`
}

// ScoringConfig holds the scoring knobs that must never be buried as
// module constants: the query-origin fallback, the evidence epoch, the
// default interest rate, and the missing-data neutral defaults.
type ScoringConfig struct {
	Origin        model.Coordinate `yaml:"origin" mapstructure:"origin"`
	FallbackEpoch string           `yaml:"fallback_epoch" mapstructure:"fallback_epoch"`
	DefaultMPIR   float64          `yaml:"default_mpir" mapstructure:"default_mpir"`
	TopN          int              `yaml:"top_n" mapstructure:"top_n"`
	Policy        PolicyConfig     `yaml:"policy" mapstructure:"policy"`
}

// PolicyConfig sets the component scores used when optional provider
// fields are absent.
type PolicyConfig struct {
	MissingLocation float64 `yaml:"missing_location" mapstructure:"missing_location"`
	MissingPrice    float64 `yaml:"missing_price" mapstructure:"missing_price"`
	MissingQuality  float64 `yaml:"missing_quality" mapstructure:"missing_quality"`
}

// ExtractConfig configures document text extraction for verification.
type ExtractConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// ServerConfig configures the read-only HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CARERANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("paths.registry", "data/providers.json")
	v.SetDefault("paths.corpus", "corpus")
	v.SetDefault("paths.events", "receipts/receipts.ndjson")
	v.SetDefault("paths.assertions", "receipts/assertions.ndjson")
	v.SetDefault("paths.ledger", "ledger")
	v.SetDefault("paths.rankings", "rankings")
	v.SetDefault("paths.presets", "config/presets")
	v.SetDefault("scoring.origin.lat", -33.8688)
	v.SetDefault("scoring.origin.lng", 151.2093)
	v.SetDefault("scoring.fallback_epoch", "2025-09-08T00:00:00Z")
	v.SetDefault("scoring.default_mpir", 7.78)
	v.SetDefault("scoring.top_n", 5)
	v.SetDefault("scoring.policy.missing_location", 0.0)
	v.SetDefault("scoring.policy.missing_price", 0.5)
	v.SetDefault("scoring.policy.missing_quality", 0.5)
	v.SetDefault("extract.provider", "none")
	v.SetDefault("extract.pdftotext_path", "pdftotext")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "carerank.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
