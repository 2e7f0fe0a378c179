// Package verify checks provider documents against registry claims and
// produces assertions: pass/fail/unknown judgments with a confidence
// and a pointer at the backing evidence.
//
// Document text extraction is out of scope here; a TextExtractor can be
// plugged in, and without one the verifier falls back to presence
// checks on document filenames.
package verify

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sydcare/carerank/internal/evidence"
	"github.com/sydcare/carerank/internal/feemath"
	"github.com/sydcare/carerank/internal/model"
)

// Page is one page of extracted document text.
type Page struct {
	Number int
	Text   string
}

// TextExtractor pulls text out of a document. Implementations live
// outside the core (pdftotext wrappers, OCR services).
type TextExtractor interface {
	Extract(path string) ([]Page, error)
}

// Verifier scans the corpus and emits assertions for the pricing and
// compliance subjects.
type Verifier struct {
	CorpusDir  string
	ObservedAt string
	Extractor  TextExtractor // nil: presence checks only
}

var complianceSignal = regexp.MustCompile(`(?i)(assessment|non-?compliance|notice|decision|sanction)`)

// Run verifies every provider with a corpus directory. Providers in the
// onlyIDs set (when non-empty) are the only ones considered.
func (v *Verifier) Run(providers []model.Provider, onlyIDs map[string]struct{}) ([]model.Assertion, error) {
	var out []model.Assertion
	for _, p := range providers {
		if len(onlyIDs) > 0 {
			if _, ok := onlyIDs[p.ProviderID]; !ok {
				continue
			}
		}

		dir := filepath.Join(v.CorpusDir, p.ProviderID)
		if _, err := os.Stat(dir); err != nil {
			continue
		}

		if a, err := v.verifyPricing(p, dir); err != nil {
			return nil, err
		} else if a != nil {
			out = append(out, *a)
		}

		if a, err := v.verifyCompliance(p, dir); err != nil {
			return nil, err
		} else if a != nil {
			out = append(out, *a)
		}
	}

	zap.L().Info("verify: corpus verification complete",
		zap.Int("providers", len(providers)),
		zap.Int("assertions", len(out)),
	)
	return out, nil
}

// verifyPricing checks that the registry's RAD/MPIR figures are backed
// by a pricing document. With an extractor, both the deposit amount and
// the derived daily payment are searched for; hits raise confidence.
func (v *Verifier) verifyPricing(p model.Provider, dir string) (*model.Assertion, error) {
	if p.RAD == nil || p.MPIR == nil {
		return nil, nil
	}

	dap, err := feemath.DailyPayment(*p.RAD, *p.MPIR)
	if err != nil {
		return nil, eris.Wrapf(err, "verify: pricing figures for %s", p.ProviderID)
	}
	claim := &model.PricingClaim{RAD: p.RAD, MPIR: p.MPIR, DAP: &dap}

	doc, err := firstDoc(dir, "pricing")
	if err != nil {
		return nil, err
	}
	if doc == "" {
		return &model.Assertion{
			ObservedAt: v.ObservedAt,
			ProviderID: p.ProviderID,
			Subject:    model.SubjectPricing,
			Claim:      claim,
			Evidence:   &model.AssertionEvidence{File: nil},
			Status:     model.StatusUnknown,
			Confidence: 0.1,
		}, nil
	}

	rel := relPath(dir, doc)
	a := &model.Assertion{
		ObservedAt: v.ObservedAt,
		ProviderID: p.ProviderID,
		Subject:    model.SubjectPricing,
		Claim:      claim,
		Evidence:   &model.AssertionEvidence{File: &rel},
		Status:     model.StatusPass,
		Confidence: 0.6,
	}

	if v.Extractor == nil {
		return a, nil
	}

	pages, err := v.Extractor.Extract(filepath.Join(dir, doc))
	if err != nil {
		zap.L().Warn("verify: text extraction failed",
			zap.String("provider_id", p.ProviderID),
			zap.Error(err),
		)
		return a, nil
	}

	radPattern := amountPattern(*p.RAD)
	dapPattern := amountPattern(dap)
	radPage, radExcerpt := findFirst(radPattern, pages)
	dapPage, dapExcerpt := findFirst(dapPattern, pages)

	hits := 0
	if radPage != nil {
		hits++
	}
	if dapPage != nil {
		hits++
	}

	switch hits {
	case 2:
		a.Confidence = 0.9
	case 1:
		a.Confidence = 0.6
	default:
		a.Status = model.StatusFail
		a.Confidence = 0.2
	}
	if page := firstNonNil(radPage, dapPage); page != nil {
		a.Evidence.Page = page
	}
	if excerpt := radExcerpt + dapExcerpt; excerpt != "" {
		a.Evidence.TextExcerptSHA256 = evidence.SHA256Bytes([]byte(excerpt))
	}
	return a, nil
}

// verifyCompliance checks for a compliance document and, with an
// extractor, for regulatory language inside it.
func (v *Verifier) verifyCompliance(p model.Provider, dir string) (*model.Assertion, error) {
	doc, err := firstDoc(dir, "compliance")
	if err != nil {
		return nil, err
	}
	if doc == "" {
		return &model.Assertion{
			ObservedAt: v.ObservedAt,
			ProviderID: p.ProviderID,
			Subject:    model.SubjectCompliance,
			Evidence:   &model.AssertionEvidence{File: nil},
			Status:     model.StatusUnknown,
			Confidence: 0.1,
		}, nil
	}

	rel := relPath(dir, doc)
	a := &model.Assertion{
		ObservedAt: v.ObservedAt,
		ProviderID: p.ProviderID,
		Subject:    model.SubjectCompliance,
		Evidence:   &model.AssertionEvidence{File: &rel},
		Status:     model.StatusPass,
		Confidence: 0.8,
	}

	if v.Extractor == nil {
		return a, nil
	}

	pages, err := v.Extractor.Extract(filepath.Join(dir, doc))
	if err != nil {
		zap.L().Warn("verify: text extraction failed",
			zap.String("provider_id", p.ProviderID),
			zap.Error(err),
		)
		return a, nil
	}

	page, excerpt := findFirst(complianceSignal, pages)
	if page != nil {
		a.Evidence.Page = page
		a.Evidence.TextExcerptSHA256 = evidence.SHA256Bytes([]byte(excerpt))
		a.Confidence = 0.6
	} else {
		a.Status = model.StatusUnknown
		a.Confidence = 0.2
	}
	return a, nil
}

// firstDoc returns the lexicographically first PDF in dir whose name
// contains the given keyword, or "" when none exists.
func firstDoc(dir, keyword string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrapf(err, "verify: read dir %s", dir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.Contains(strings.ToLower(name), keyword) &&
			strings.EqualFold(filepath.Ext(name), ".pdf") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	sort.Strings(names)
	return names[0], nil
}

// amountPattern matches a dollar amount with optional thousands commas,
// e.g. 400000 -> "$400,000" or "400000"; cents are kept for non-integers.
func amountPattern(amount float64) *regexp.Regexp {
	whole := int64(amount)
	cents := int64(amount*100+0.5) - whole*100

	body := commaGroups(whole)
	if cents != 0 {
		body = fmt.Sprintf(`%s\.%02d`, body, cents)
	}
	return regexp.MustCompile(`\$?\s*` + body)
}

// commaGroups renders 1234567 as the pattern `1,?234,?567` so both
// comma-separated and plain renderings match.
func commaGroups(n int64) string {
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteString(",?")
		}
		b.WriteRune(c)
	}
	return b.String()
}

// findFirst returns the page number and surrounding excerpt of the
// first match across pages.
func findFirst(rx *regexp.Regexp, pages []Page) (*int, string) {
	for _, pg := range pages {
		loc := rx.FindStringIndex(pg.Text)
		if loc == nil {
			continue
		}
		start := max(0, loc[0]-80)
		end := min(len(pg.Text), loc[1]+80)
		page := pg.Number
		return &page, pg.Text[start:end]
	}
	return nil, ""
}

func firstNonNil(a, b *int) *int {
	if a != nil {
		return a
	}
	return b
}

func relPath(dir, name string) string {
	return filepath.ToSlash(filepath.Join("corpus", filepath.Base(dir), name))
}
