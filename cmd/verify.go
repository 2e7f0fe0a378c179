package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sydcare/carerank/internal/evidence"
	"github.com/sydcare/carerank/internal/extract"
	"github.com/sydcare/carerank/internal/registry"
	"github.com/sydcare/carerank/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [provider-id...]",
	Short: "Verify corpus documents against registry claims",
	Long: `Check each provider's pricing and compliance documents and append
pass/fail/unknown assertions to the evidence ledger. Without a text
extractor configured the check is presence-based: a matching document
earns a lower-confidence pass.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		providers, err := registry.Load(cfg.Paths.Registry)
		if err != nil {
			return err
		}

		observedAt, _ := cmd.Flags().GetString("observed-at")
		if observedAt == "" {
			observedAt = cfg.Scoring.FallbackEpoch
		}

		var onlyIDs map[string]struct{}
		if len(args) > 0 {
			onlyIDs = make(map[string]struct{}, len(args))
			for _, id := range args {
				onlyIDs[id] = struct{}{}
			}
		}

		extractor, err := newExtractor()
		if err != nil {
			return err
		}

		v := &verify.Verifier{
			CorpusDir:  cfg.Paths.Corpus,
			ObservedAt: observedAt,
			Extractor:  extractor,
		}
		asserts, err := v.Run(providers, onlyIDs)
		if err != nil {
			return err
		}

		ev := evidence.NewStore(cfg.Paths.Events, cfg.Paths.Assertions)
		if err := ev.AppendAssertions(asserts...); err != nil {
			return err
		}

		zap.L().Info("verification complete", zap.Int("assertions", len(asserts)))
		fmt.Printf("Appended %d assertions to %s\n", len(asserts), cfg.Paths.Assertions)
		return nil
	},
}

// newExtractor builds the configured text extractor, or nil for
// presence-only verification.
func newExtractor() (verify.TextExtractor, error) {
	switch cfg.Extract.Provider {
	case "", "none":
		return nil, nil
	case "pdftotext":
		return extract.NewPdfToText(cfg.Extract.PdfToTextPath), nil
	default:
		return nil, eris.Errorf("verify: unknown extract provider %q", cfg.Extract.Provider)
	}
}

func init() {
	verifyCmd.Flags().String("observed-at", "", "observation timestamp stamped on assertions (default: the configured fallback epoch)")
	rootCmd.AddCommand(verifyCmd)
}
