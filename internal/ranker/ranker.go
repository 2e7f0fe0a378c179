// Package ranker turns scored providers into a stable Top-N ranking:
// descending fit score, ties broken by ascending provider id, truncated
// to the requested count. Identical inputs yield byte-identical output.
package ranker

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sydcare/carerank/internal/evidence"
	"github.com/sydcare/carerank/internal/model"
	"github.com/sydcare/carerank/internal/scorer"
)

// DefaultTopN is the number of items returned when none is requested.
const DefaultTopN = 5

// Config parameterizes the ranker.
type Config struct {
	TopN int

	// FallbackEpoch is the generated_at value used when the evidence
	// store is empty. Wall-clock time never appears in a ranking.
	FallbackEpoch string
}

// Ranker computes ranking results from providers, a query, and the
// evidence trail.
type Ranker struct {
	engine *scorer.Engine
	cfg    Config
}

// New returns a ranker with defaults applied.
func New(engine *scorer.Engine, cfg Config) *Ranker {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	return &Ranker{engine: engine, cfg: cfg}
}

// Rank scores every eligible provider, orders them by the total-order
// tie-break rule, and truncates to top N. When eligibility filtering
// empties a non-empty pool, a neutral-valued fallback ranking is
// produced instead of an empty result.
func (r *Ranker) Rank(providers []model.Provider, q model.Query, preset string, events []model.Event, asserts []model.Assertion) (*model.RankingResult, error) {
	if err := scorer.ValidateWeights(r.engine.Weights()); err != nil {
		return nil, err
	}
	if err := scorer.ValidateQuery(q); err != nil {
		return nil, err
	}

	receipts := evidence.ByProvider(events)

	var items []model.ScoredItem
	for _, p := range providers {
		if p.ProviderID == "" {
			return nil, eris.New("ranker: provider without provider_id")
		}
		if !r.engine.Eligible(p, q, asserts) {
			continue
		}
		items = append(items, r.engine.Score(p, q, receipts[p.ProviderID], asserts))
	}

	if len(items) == 0 && len(providers) > 0 {
		zap.L().Warn("ranker: no eligible providers, using neutral fallback",
			zap.Int("pool", len(providers)),
		)
		items = neutralFallback(providers, r.cfg.TopN)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].FitScore != items[j].FitScore {
			return items[i].FitScore > items[j].FitScore
		}
		return items[i].ProviderID < items[j].ProviderID
	})

	if len(items) > r.cfg.TopN {
		items = items[:r.cfg.TopN]
	}
	if items == nil {
		items = []model.ScoredItem{}
	}

	return &model.RankingResult{
		Query:       q,
		Preset:      preset,
		GeneratedAt: evidence.LatestObserved(events, r.cfg.FallbackEpoch),
		Items:       items,
	}, nil
}

// neutralFallback fabricates neutral-valued items for the first topN
// providers in registry order, so a non-empty pool never yields an
// empty ranking.
func neutralFallback(providers []model.Provider, topN int) []model.ScoredItem {
	n := min(topN, len(providers))
	items := make([]model.ScoredItem, 0, n)
	for _, p := range providers[:n] {
		items = append(items, model.ScoredItem{
			ProviderID: p.ProviderID,
			FitScore:   0.5,
			Components: model.Components{Location: 0.5, Price: 0.5, Quality: 0.5, Needs: 0.0},
			Receipts:   []model.Event{},
		})
	}
	return items
}
