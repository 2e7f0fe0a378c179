package ranker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sydcare/carerank/internal/model"
	"github.com/sydcare/carerank/internal/scorer"
)

var sydneyCBD = model.Coordinate{Lat: -33.8688, Lng: 151.2093}

const epoch = "2025-09-08T00:00:00Z"

func f64(v float64) *float64 { return &v }
func strPtr(s string) *string { return &s }

func balancedWeights() model.WeightProfile {
	return model.WeightProfile{Name: "balanced", Location: 0.3, Price: 0.3, Quality: 0.3, Needs: 0.1}
}

func testRanker(strict bool, topN int) *Ranker {
	engine := scorer.New(scorer.Config{
		Origin:  sydneyCBD,
		Weights: balancedWeights(),
		Policy:  scorer.DefaultPolicy(),
		Strict:  strict,
	})
	return New(engine, Config{TopN: topN, FallbackEpoch: epoch})
}

func testProviders() []model.Provider {
	return []model.Provider{
		{ProviderID: "racs_b", Lat: f64(sydneyCBD.Lat + 0.045), Lng: f64(sydneyCBD.Lng), PricePerDay: f64(95), StarOverall: f64(3.9), Tags: []string{"palliative"}},
		{ProviderID: "racs_a", Lat: f64(sydneyCBD.Lat), Lng: f64(sydneyCBD.Lng), PricePerDay: f64(85), StarOverall: f64(4.2), Tags: []string{"memory_support"}},
		{ProviderID: "racs_c"},
	}
}

func testQuery() model.Query {
	return model.Query{RadiusKM: 20, BudgetPerDay: 90, Needs: []string{"memory_support"}}
}

func TestRankOrdersByFitThenID(t *testing.T) {
	r := testRanker(false, 5)
	res, err := r.Rank(testProviders(), testQuery(), "balanced", nil, nil)
	require.NoError(t, err)

	require.Len(t, res.Items, 3)
	assert.Equal(t, "racs_a", res.Items[0].ProviderID)
	for i := 1; i < len(res.Items); i++ {
		prev, cur := res.Items[i-1], res.Items[i]
		ordered := prev.FitScore > cur.FitScore ||
			(prev.FitScore == cur.FitScore && prev.ProviderID < cur.ProviderID)
		assert.True(t, ordered, "items %d and %d out of order", i-1, i)
	}
}

func TestRankTieBreakByProviderID(t *testing.T) {
	providers := []model.Provider{
		{ProviderID: "racs_z"},
		{ProviderID: "racs_a"},
		{ProviderID: "racs_m"},
	}
	r := testRanker(false, 5)
	res, err := r.Rank(providers, testQuery(), "balanced", nil, nil)
	require.NoError(t, err)

	require.Len(t, res.Items, 3)
	assert.Equal(t, "racs_a", res.Items[0].ProviderID)
	assert.Equal(t, "racs_m", res.Items[1].ProviderID)
	assert.Equal(t, "racs_z", res.Items[2].ProviderID)
}

func TestRankTruncatesToTopN(t *testing.T) {
	r := testRanker(false, 2)
	res, err := r.Rank(testProviders(), testQuery(), "balanced", nil, nil)
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
}

func TestRankNeutralFallback(t *testing.T) {
	// Strict mode with no assertions filters out every provider.
	r := testRanker(true, 5)
	res, err := r.Rank(testProviders(), testQuery(), "balanced", nil, nil)
	require.NoError(t, err)

	require.Len(t, res.Items, 3)
	for _, item := range res.Items {
		assert.Equal(t, 0.5, item.FitScore)
		assert.Equal(t, 0.5, item.Components.Location)
		assert.Equal(t, 0.5, item.Components.Price)
		assert.Equal(t, 0.5, item.Components.Quality)
		assert.Equal(t, 0.0, item.Components.Needs)
		assert.NotNil(t, item.Receipts)
	}
}

func TestRankEmptyPool(t *testing.T) {
	r := testRanker(false, 5)
	res, err := r.Rank(nil, testQuery(), "balanced", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)
}

func TestRankGeneratedAtFromEvidence(t *testing.T) {
	events := []model.Event{
		{ObservedAt: "2025-09-08T00:00:00Z", Kind: model.KindDocIngest, ProviderID: strPtr("racs_a"), SHA256: "aa"},
		{ObservedAt: "2025-09-11T06:00:00Z", Kind: model.KindDocIngest, ProviderID: strPtr("racs_b"), SHA256: "bb"},
	}
	r := testRanker(false, 5)

	res, err := r.Rank(testProviders(), testQuery(), "balanced", events, nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-09-11T06:00:00Z", res.GeneratedAt)

	// No events: fixed epoch, never wall-clock.
	res, err = r.Rank(testProviders(), testQuery(), "balanced", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, epoch, res.GeneratedAt)
}

func TestRankAttachesReceipts(t *testing.T) {
	events := []model.Event{
		{ObservedAt: epoch, Kind: model.KindDocIngest, ProviderID: strPtr("racs_a"), SHA256: "aa", SizeBytes: 10},
		{ObservedAt: epoch, Kind: model.KindDocIngest, ProviderID: strPtr("racs_a"), SHA256: "ab", SizeBytes: 11},
	}
	r := testRanker(false, 5)
	res, err := r.Rank(testProviders(), testQuery(), "balanced", events, nil)
	require.NoError(t, err)

	require.Equal(t, "racs_a", res.Items[0].ProviderID)
	assert.Len(t, res.Items[0].Receipts, 2)
	assert.Empty(t, res.Items[1].Receipts)
}

func TestRankRejectsMalformedInput(t *testing.T) {
	r := testRanker(false, 5)

	_, err := r.Rank([]model.Provider{{ProviderID: ""}}, testQuery(), "balanced", nil, nil)
	assert.Error(t, err)

	_, err = r.Rank(testProviders(), model.Query{RadiusKM: -1}, "balanced", nil, nil)
	assert.Error(t, err)

	bad := scorer.New(scorer.Config{Origin: sydneyCBD, Policy: scorer.DefaultPolicy()})
	_, err = New(bad, Config{TopN: 5, FallbackEpoch: epoch}).
		Rank(testProviders(), testQuery(), "balanced", nil, nil)
	assert.Error(t, err)
}

func TestRankDeterministicBytes(t *testing.T) {
	events := []model.Event{
		{ObservedAt: epoch, Kind: model.KindDocIngest, ProviderID: strPtr("racs_a"), SHA256: "aa", SizeBytes: 10},
	}
	r := testRanker(false, 5)

	first, err := r.Rank(testProviders(), testQuery(), "balanced", events, nil)
	require.NoError(t, err)
	firstBytes, err := Encode(first)
	require.NoError(t, err)

	for range 5 {
		res, err := r.Rank(testProviders(), testQuery(), "balanced", events, nil)
		require.NoError(t, err)
		b, err := Encode(res)
		require.NoError(t, err)
		assert.Equal(t, string(firstBytes), string(b))
	}
}

func TestWriteResultAndScoreRunEvent(t *testing.T) {
	r := testRanker(false, 5)
	res, err := r.Rank(testProviders(), testQuery(), "balanced", nil, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "rankings", "top5.json")
	sha, size, err := WriteResult(path, res)
	require.NoError(t, err)
	assert.Len(t, sha, 64)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(raw)), size)

	evt := ScoreRunEvent(res, "rankings/top5.json", sha, size)
	assert.Equal(t, model.KindScoreRun, evt.Kind)
	assert.Equal(t, res.GeneratedAt, evt.ObservedAt)
	assert.Nil(t, evt.ProviderID)
	assert.Equal(t, sha, evt.SHA256)
	assert.Equal(t, size, evt.SizeBytes)
}
