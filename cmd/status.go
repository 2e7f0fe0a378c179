package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sydcare/carerank/internal/evidence"
	"github.com/sydcare/carerank/internal/registry"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize registry, corpus, and ledger state",
	RunE: func(cmd *cobra.Command, _ []string) error {
		providers, err := registry.Load(cfg.Paths.Registry)
		if err != nil {
			return err
		}

		withDocs := 0
		missingStars := 0
		withCoords := 0
		for _, p := range providers {
			if _, err := os.Stat(filepath.Join(cfg.Paths.Corpus, p.ProviderID)); err == nil {
				withDocs++
			}
			if p.StarOverall == nil {
				missingStars++
			}
			if p.HasCoordinates() {
				withCoords++
			}
		}

		ev := evidence.NewStore(cfg.Paths.Events, cfg.Paths.Assertions)
		events, err := ev.LoadEvents()
		if err != nil {
			return err
		}
		asserts, err := ev.LoadAssertions()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "Registered providers\t%d\n", len(providers))
		fmt.Fprintf(tw, "  with corpus documents\t%d\n", withDocs)
		fmt.Fprintf(tw, "  with coordinates\t%d\n", withCoords)
		fmt.Fprintf(tw, "  missing star ratings\t%d\n", missingStars)
		fmt.Fprintf(tw, "Ledger events\t%d\n", len(events))
		fmt.Fprintf(tw, "Assertions\t%d\n", len(asserts))
		fmt.Fprintf(tw, "Latest observation\t%s\n", evidence.LatestObserved(events, cfg.Scoring.FallbackEpoch))
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
