package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sydcare/carerank/internal/evidence"
	"github.com/sydcare/carerank/internal/model"
	"github.com/sydcare/carerank/internal/registry"
	"github.com/sydcare/carerank/internal/verify"
)

var assertCmd = &cobra.Command{
	Use:   "assert <provider-id>...",
	Short: "Stamp assertions from registry figures",
	Long: `Append assertions for the given providers built directly from
registry figures, bypassing document inspection. Useful for seeding a
ledger or overriding a verification result by hand.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		providers, err := registry.Load(cfg.Paths.Registry)
		if err != nil {
			return err
		}
		byID := make(map[string]model.Provider, len(providers))
		for _, p := range providers {
			byID[p.ProviderID] = p
		}

		subject, _ := cmd.Flags().GetString("subject")
		status, _ := cmd.Flags().GetString("status")
		confidence, _ := cmd.Flags().GetFloat64("confidence")
		observedAt, _ := cmd.Flags().GetString("observed-at")
		if observedAt == "" {
			observedAt = cfg.Scoring.FallbackEpoch
		}

		var asserts []model.Assertion
		for _, id := range args {
			p, ok := byID[id]
			if !ok {
				return eris.Errorf("assert: provider %s not in registry", id)
			}
			a, err := verify.Stamp(p, cfg.Paths.Corpus, verify.StampOptions{
				Subject:     subject,
				Status:      status,
				Confidence:  confidence,
				ObservedAt:  observedAt,
				DefaultMPIR: cfg.Scoring.DefaultMPIR,
			})
			if err != nil {
				return err
			}
			asserts = append(asserts, *a)
		}

		ev := evidence.NewStore(cfg.Paths.Events, cfg.Paths.Assertions)
		if err := ev.AppendAssertions(asserts...); err != nil {
			return err
		}
		fmt.Printf("Stamped %d %s assertions\n", len(asserts), subject)
		return nil
	},
}

func init() {
	f := assertCmd.Flags()
	f.String("subject", model.SubjectPricing, "assertion subject: pricing or compliance")
	f.String("status", model.StatusPass, "assertion status: pass, fail, or unknown")
	f.Float64("confidence", 0.9, "assertion confidence in [0,1]")
	f.String("observed-at", "", "observation timestamp (default: the configured fallback epoch)")

	rootCmd.AddCommand(assertCmd)
}
