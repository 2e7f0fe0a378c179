package scorer

import "github.com/sydcare/carerank/internal/model"

// Resolve picks the winning passing assertion for a provider and
// subject: highest confidence, then most recent observed_at. Returns
// nil when no assertion passes.
func Resolve(asserts []model.Assertion, providerID, subject string) *model.Assertion {
	var best *model.Assertion
	for i := range asserts {
		a := &asserts[i]
		if a.ProviderID != providerID || a.Subject != subject {
			continue
		}
		if a.Status != model.StatusPass {
			continue
		}
		if best == nil || betterThan(a, best) {
			best = a
		}
	}
	return best
}

func betterThan(a, b *model.Assertion) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return a.ObservedAt > b.ObservedAt
}

// ValidateWeights rejects negative or all-zero weight profiles before
// any scoring proceeds.
func ValidateWeights(w model.WeightProfile) error {
	if w.Location < 0 || w.Price < 0 || w.Quality < 0 || w.Needs < 0 {
		return errNegativeWeight
	}
	if w.Sum() <= 0 {
		return errZeroWeightSum
	}
	return nil
}

// ValidateQuery enforces the basic shape checks: positive radius,
// non-negative budget.
func ValidateQuery(q model.Query) error {
	if q.RadiusKM <= 0 {
		return errNonPositiveRadius
	}
	if q.BudgetPerDay < 0 {
		return errNegativeBudget
	}
	return nil
}
