package scorer

import "github.com/rotisserie/eris"

var (
	errNegativeWeight    = eris.New("scorer: weights must be non-negative")
	errZeroWeightSum     = eris.New("scorer: weight sum must be > 0")
	errNonPositiveRadius = eris.New("scorer: query radius_km must be > 0")
	errNegativeBudget    = eris.New("scorer: query budget_per_day must be >= 0")
)
