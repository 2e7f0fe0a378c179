package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sydcare/carerank/internal/evidence"
	"github.com/sydcare/carerank/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Hash corpus documents into doc_ingest receipts",
	Long: `Walk corpus/<provider_id>/ directories, sha256 every document, and
append one doc_ingest event per file to the evidence ledger. Events carry a
fixed observation timestamp, never the wall clock, so a replay of the same
corpus produces the same ledger.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		observedAt, _ := cmd.Flags().GetString("observed-at")
		if observedAt == "" {
			observedAt = cfg.Scoring.FallbackEpoch
		}
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		events, err := ingest.Receipts(cfg.Paths.Corpus, ingest.Options{
			ObservedAt:  observedAt,
			Concurrency: concurrency,
		})
		if err != nil {
			return err
		}

		ev := evidence.NewStore(cfg.Paths.Events, cfg.Paths.Assertions)
		if err := ev.AppendEvents(events...); err != nil {
			return err
		}

		zap.L().Info("corpus ingested",
			zap.String("corpus", cfg.Paths.Corpus),
			zap.Int("receipts", len(events)),
		)
		fmt.Printf("Ingested %d documents into %s\n", len(events), cfg.Paths.Events)
		return nil
	},
}

func init() {
	f := ingestCmd.Flags()
	f.String("observed-at", "", "observation timestamp stamped on every receipt (default: the configured fallback epoch)")
	f.Int("concurrency", 0, "parallel hashing workers (default GOMAXPROCS)")

	rootCmd.AddCommand(ingestCmd)
}
