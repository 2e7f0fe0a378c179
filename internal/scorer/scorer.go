// Package scorer implements the deterministic per-provider scoring
// engine: four component signals (location, price, quality, needs)
// combined into a weighted fit score.
package scorer

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/sydcare/carerank/internal/feemath"
	"github.com/sydcare/carerank/internal/geodist"
	"github.com/sydcare/carerank/internal/model"
)

// Policy fixes how missing optional provider data scores. It is applied
// uniformly: no provider silently vanishes for lacking a field.
type Policy struct {
	MissingLocation float64 `mapstructure:"missing_location"`
	MissingPrice    float64 `mapstructure:"missing_price"`
	MissingQuality  float64 `mapstructure:"missing_quality"`
}

// DefaultPolicy scores absent coordinates as 0.0 and absent price or
// stars as a neutral 0.5.
func DefaultPolicy() Policy {
	return Policy{MissingLocation: 0.0, MissingPrice: 0.5, MissingQuality: 0.5}
}

// Config parameterizes the engine. Everything that used to be a baked-in
// constant (origin, epsilon floors) arrives here explicitly.
type Config struct {
	Origin      model.Coordinate
	Weights     model.WeightProfile
	Policy      Policy
	MinRadiusKM float64 // floor for the radius denominator, default 0.1

	// Strict mode: price comes only from a passing pricing assertion,
	// and providers without one, outside the query radius, or over
	// budget are ineligible.
	Strict bool
}

// Engine scores providers against a query. It is a pure function of its
// inputs; identical inputs always produce identical scored items.
type Engine struct {
	cfg Config
}

// New returns an engine with defaults applied.
func New(cfg Config) *Engine {
	if cfg.MinRadiusKM <= 0 {
		cfg.MinRadiusKM = 0.1
	}
	return &Engine{cfg: cfg}
}

// Weights returns the engine's weight profile.
func (e *Engine) Weights() model.WeightProfile {
	return e.cfg.Weights
}

// Score computes the scored item for one provider.
func (e *Engine) Score(p model.Provider, q model.Query, receipts []model.Event, asserts []model.Assertion) model.ScoredItem {
	origin := q.Origin(e.cfg.Origin)

	loc, dist := e.scoreLocation(p, origin, q.RadiusKM)
	daily := e.resolveDailyPrice(p, asserts)
	price := e.scorePrice(daily, q.BudgetPerDay)
	quality := e.scoreQuality(p)
	needs := scoreNeeds(p, q.Needs)

	w := e.cfg.Weights
	fit := w.Location*loc + w.Price*price + w.Quality*quality + w.Needs*needs

	item := model.ScoredItem{
		ProviderID: p.ProviderID,
		FitScore:   round6(fit),
		Components: model.Components{
			Location: round6(loc),
			Price:    round6(price),
			Quality:  round6(quality),
			Needs:    round6(needs),
		},
		Reasons:  e.reasons(p, q, dist, daily, needs, asserts),
		Receipts: receipts,
	}
	if item.Receipts == nil {
		item.Receipts = []model.Event{}
	}
	return item
}

// Eligible reports whether a provider participates in the ranking at
// all. The default policy includes everyone; strict mode demands known
// coordinates within radius and a resolved price within budget.
func (e *Engine) Eligible(p model.Provider, q model.Query, asserts []model.Assertion) bool {
	if !e.cfg.Strict {
		return true
	}
	if !p.HasCoordinates() {
		return false
	}
	origin := q.Origin(e.cfg.Origin)
	if geodist.Kilometers(origin.Lat, origin.Lng, *p.Lat, *p.Lng) > q.RadiusKM {
		return false
	}
	daily := e.resolveDailyPrice(p, asserts)
	return daily != nil && *daily <= q.BudgetPerDay
}

// scoreLocation returns the location component and, when coordinates are
// present, the distance from the origin.
func (e *Engine) scoreLocation(p model.Provider, origin model.Coordinate, radiusKM float64) (float64, *float64) {
	if !p.HasCoordinates() {
		return e.cfg.Policy.MissingLocation, nil
	}
	d := geodist.Kilometers(origin.Lat, origin.Lng, *p.Lat, *p.Lng)
	denom := math.Max(radiusKM, e.cfg.MinRadiusKM)
	return 1.0 - clamp01(d/denom), &d
}

// resolveDailyPrice resolves a provider's daily price. Strict mode
// trusts only a passing pricing assertion's DAP claim; otherwise the
// explicit price wins, then the RAD/MPIR derivation.
func (e *Engine) resolveDailyPrice(p model.Provider, asserts []model.Assertion) *float64 {
	if e.cfg.Strict {
		if a := Resolve(asserts, p.ProviderID, model.SubjectPricing); a != nil && a.Claim != nil && a.Claim.DAP != nil {
			return a.Claim.DAP
		}
		return nil
	}

	if p.PricePerDay != nil {
		return p.PricePerDay
	}
	if p.RAD != nil && p.MPIR != nil {
		dap, err := feemath.DailyPayment(*p.RAD, *p.MPIR)
		if err != nil {
			zap.L().Warn("scorer: daily payment derivation failed",
				zap.String("provider_id", p.ProviderID),
				zap.Error(err),
			)
			return nil
		}
		return &dap
	}
	return nil
}

// scorePrice maps a resolved daily price against the budget: full score
// at or under budget, linear falloff above, never negative.
func (e *Engine) scorePrice(daily *float64, budget float64) float64 {
	if daily == nil {
		return e.cfg.Policy.MissingPrice
	}
	if *daily <= budget {
		return 1.0
	}
	return clamp01(1.0 - (*daily-budget)/math.Max(budget, 1.0))
}

func (e *Engine) scoreQuality(p model.Provider) float64 {
	if p.StarOverall == nil {
		return e.cfg.Policy.MissingQuality
	}
	return clamp01(*p.StarOverall / 5.0)
}

// scoreNeeds is a binary signal: 1.0 when the provider's tag set
// intersects the query's needs, 0.0 otherwise.
func scoreNeeds(p model.Provider, needs []string) float64 {
	for _, need := range needs {
		if p.HasTag(need) {
			return 1.0
		}
	}
	return 0.0
}

// reasons builds the human-readable justification attached to each item.
func (e *Engine) reasons(p model.Provider, q model.Query, dist, daily *float64, needs float64, asserts []model.Assertion) []string {
	var out []string

	if dist != nil {
		out = append(out, fmt.Sprintf("%.1f km from origin", *dist))
	} else {
		out = append(out, "location unknown")
	}

	switch {
	case daily == nil:
		out = append(out, "price unknown")
	case *daily <= q.BudgetPerDay:
		out = append(out, fmt.Sprintf("$%.2f/day within budget", *daily))
	default:
		out = append(out, fmt.Sprintf("$%.2f/day over budget", *daily))
	}

	if p.StarOverall != nil {
		out = append(out, fmt.Sprintf("%.1f star overall rating", *p.StarOverall))
	}
	if needs > 0 {
		out = append(out, "meets care needs")
	}

	if e.cfg.Strict {
		if a := Resolve(asserts, p.ProviderID, model.SubjectCompliance); a != nil && a.Status == model.StatusFail {
			out = append(out, "compliance check failed")
		}
	}
	return out
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

func round6(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}
