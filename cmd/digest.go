package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sydcare/carerank/internal/canonjson"
	"github.com/sydcare/carerank/internal/evidence"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Roll the evidence ledger up into a daily digest",
	Long: `Write ledger/digest-<date>.json summarizing the event ledger: event
count plus a combined hash over the sorted lines. The date comes from the
latest observed_at in the ledger, so replays of the same ledger write the
same digest.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ev := evidence.NewStore(cfg.Paths.Events, cfg.Paths.Assertions)
		d, err := ev.BuildDigest(cfg.Scoring.FallbackEpoch)
		if err != nil {
			return err
		}
		if d == nil {
			fmt.Println("No events to digest.")
			return nil
		}

		data, err := canonjson.Marshal(d)
		if err != nil {
			return eris.Wrap(err, "digest: encode")
		}
		if err := os.MkdirAll(cfg.Paths.Ledger, 0o755); err != nil {
			return eris.Wrapf(err, "digest: create %s", cfg.Paths.Ledger)
		}
		path := filepath.Join(cfg.Paths.Ledger, fmt.Sprintf("digest-%s.json", d.Date))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return eris.Wrapf(err, "digest: write %s", path)
		}

		zap.L().Info("digest written",
			zap.String("path", path),
			zap.Int("events", d.EventsCount),
		)
		fmt.Printf("Wrote %s (%d events)\n", path, d.EventsCount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(digestCmd)
}
