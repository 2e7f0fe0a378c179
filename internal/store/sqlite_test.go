package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sydcare/carerank/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testRun(preset string) model.Run {
	lat := -33.8688
	lng := 151.2093
	return model.Run{
		ID:     uuid.New().String(),
		Preset: preset,
		Query: model.Query{
			Postcode:     "2000",
			Lat:          &lat,
			Lng:          &lng,
			RadiusKM:     20,
			BudgetPerDay: 120,
		},
		Status:      model.RunStatusComplete,
		ResultSHA:   "ab12",
		ItemCount:   5,
		GeneratedAt: "2025-09-01T00:00:00Z",
		CreatedAt:   time.Now().UTC(),
	}
}

func TestSQLiteStore_CreateAndGetRun(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run := testRun("balanced")
	require.NoError(t, s.CreateRun(ctx, run))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "balanced", got.Preset)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, "ab12", got.ResultSHA)
	assert.Equal(t, 5, got.ItemCount)
	assert.Equal(t, "2025-09-01T00:00:00Z", got.GeneratedAt)
	assert.Equal(t, "2000", got.Query.Postcode)
	require.NotNil(t, got.Query.Lat)
	assert.InDelta(t, -33.8688, *got.Query.Lat, 1e-9)
}

func TestSQLiteStore_GetRun_NotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestSQLiteStore_ListRuns_FilterByPreset(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateRun(ctx, testRun("balanced")))
	require.NoError(t, s.CreateRun(ctx, testRun("budget")))
	require.NoError(t, s.CreateRun(ctx, testRun("budget")))

	runs, err := s.ListRuns(ctx, RunFilter{Preset: "budget"})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, r := range runs {
		assert.Equal(t, "budget", r.Preset)
	}

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLiteStore_ListRuns_Limit(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, s.CreateRun(ctx, testRun("balanced")))
	}

	runs, err := s.ListRuns(ctx, RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestSQLiteStore_ListRuns_Empty(t *testing.T) {
	s := newTestSQLiteStore(t)

	runs, err := s.ListRuns(context.Background(), RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}

func TestOpen_DefaultsToSQLite(t *testing.T) {
	s, err := Open(context.Background(), Config{DSN: filepath.Join(t.TempDir(), "open.db")})
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.(*SQLiteStore)
	assert.True(t, ok)
}
