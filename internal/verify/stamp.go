package verify

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sydcare/carerank/internal/feemath"
	"github.com/sydcare/carerank/internal/model"
)

// StampOptions parameterizes a forced assertion.
type StampOptions struct {
	Subject    string
	Status     string
	Confidence float64
	ObservedAt string

	// DefaultMPIR stands in when the registry carries a RAD but no
	// interest rate of its own.
	DefaultMPIR float64
}

// Stamp builds an assertion for a provider directly from registry
// figures, without inspecting document content. The first corpus
// document matching the subject keyword is attached as evidence when
// one exists.
func Stamp(p model.Provider, corpusDir string, opts StampOptions) (*model.Assertion, error) {
	switch opts.Subject {
	case model.SubjectPricing, model.SubjectCompliance:
	default:
		return nil, eris.Errorf("verify: unknown subject %q", opts.Subject)
	}
	switch opts.Status {
	case model.StatusPass, model.StatusFail, model.StatusUnknown:
	default:
		return nil, eris.Errorf("verify: unknown status %q", opts.Status)
	}

	a := &model.Assertion{
		ObservedAt: opts.ObservedAt,
		ProviderID: p.ProviderID,
		Subject:    opts.Subject,
		Evidence:   &model.AssertionEvidence{File: nil},
		Status:     opts.Status,
		Confidence: opts.Confidence,
	}

	if opts.Subject == model.SubjectPricing {
		if p.RAD == nil {
			return nil, eris.Errorf("verify: provider %s has no RAD to stamp", p.ProviderID)
		}
		mpir := opts.DefaultMPIR
		if p.MPIR != nil {
			mpir = *p.MPIR
		}
		dap, err := feemath.DailyPayment(*p.RAD, mpir)
		if err != nil {
			return nil, eris.Wrapf(err, "verify: pricing figures for %s", p.ProviderID)
		}
		a.Claim = &model.PricingClaim{RAD: p.RAD, MPIR: &mpir, DAP: &dap}
	}

	dir := filepath.Join(corpusDir, p.ProviderID)
	if _, err := os.Stat(dir); err != nil {
		return a, nil
	}
	doc, err := firstDoc(dir, opts.Subject)
	if err != nil {
		return nil, err
	}
	if doc != "" {
		rel := relPath(dir, doc)
		a.Evidence.File = &rel
	}
	return a, nil
}
