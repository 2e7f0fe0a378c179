package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sydcare/carerank/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "carerank",
	Short: "Deterministic Top-N ranking of residential care providers",
	Long:  "Scores and ranks residential care providers against a family's query from a local registry, document corpus, and append-only evidence ledger. Identical inputs always produce byte-identical rankings.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
