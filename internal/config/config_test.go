package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/providers.json", cfg.Paths.Registry)
	assert.Equal(t, "corpus", cfg.Paths.Corpus)
	assert.Equal(t, "receipts/receipts.ndjson", cfg.Paths.Events)
	assert.Equal(t, "receipts/assertions.ndjson", cfg.Paths.Assertions)
	assert.Equal(t, "config/presets", cfg.Paths.Presets)
	assert.InDelta(t, -33.8688, cfg.Scoring.Origin.Lat, 0.0001)
	assert.InDelta(t, 151.2093, cfg.Scoring.Origin.Lng, 0.0001)
	assert.Equal(t, "2025-09-08T00:00:00Z", cfg.Scoring.FallbackEpoch)
	assert.InDelta(t, 7.78, cfg.Scoring.DefaultMPIR, 0.001)
	assert.Equal(t, 5, cfg.Scoring.TopN)
	assert.InDelta(t, 0.0, cfg.Scoring.Policy.MissingLocation, 0.001)
	assert.InDelta(t, 0.5, cfg.Scoring.Policy.MissingPrice, 0.001)
	assert.InDelta(t, 0.5, cfg.Scoring.Policy.MissingQuality, 0.001)
	assert.Equal(t, "none", cfg.Extract.Provider)
	assert.Equal(t, "pdftotext", cfg.Extract.PdfToTextPath)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "carerank.db", cfg.Store.DSN)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  dsn: postgres://localhost/carerank
scoring:
  top_n: 10
  origin:
    lat: -37.8136
    lng: 144.9631
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/carerank", cfg.Store.DSN)
	assert.Equal(t, 10, cfg.Scoring.TopN)
	assert.InDelta(t, -37.8136, cfg.Scoring.Origin.Lat, 0.0001)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, "corpus", cfg.Paths.Corpus)
	assert.Equal(t, "2025-09-08T00:00:00Z", cfg.Scoring.FallbackEpoch)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: info
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("CARERANK_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [not a map"), 0644))

	_, err := Load()
	require.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func TestLoadPresetBuiltin(t *testing.T) {
	w, err := LoadPreset(t.TempDir(), "balanced")
	require.NoError(t, err)
	assert.Equal(t, "Balanced", w.Name)
	assert.InDelta(t, 0.30, w.Location, 0.001)
	assert.InDelta(t, 0.30, w.Price, 0.001)
	assert.InDelta(t, 0.30, w.Quality, 0.001)
	assert.InDelta(t, 0.10, w.Needs, 0.001)
	assert.InDelta(t, 1.0, w.Sum(), 0.001)
}

func TestLoadPresetFileOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "balanced.json"),
		[]byte(`{"w_location":0.4,"w_price":0.4,"w_quality":0.1,"w_needs":0.1}`), 0644))

	w, err := LoadPreset(dir, "balanced")
	require.NoError(t, err)
	assert.InDelta(t, 0.4, w.Location, 0.001)
	assert.Equal(t, "balanced", w.Name)
}

func TestLoadPresetYAMLFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "name: Coastal\nw_location: 0.6\nw_price: 0.2\nw_quality: 0.1\nw_needs: 0.1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "coastal.yaml"), []byte(yaml), 0644))

	w, err := LoadPreset(dir, "coastal")
	require.NoError(t, err)
	assert.Equal(t, "Coastal", w.Name)
	assert.InDelta(t, 0.6, w.Location, 0.001)
}

func TestLoadPresetUnknown(t *testing.T) {
	_, err := LoadPreset(t.TempDir(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown preset")
}

func TestLoadPresetMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0644))

	_, err := LoadPreset(dir, "bad")
	require.Error(t, err)
}

func TestPresetNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "coastal.yaml"), []byte("w_location: 1\n"), 0644))

	names := PresetNames(dir)
	assert.Contains(t, names, "balanced")
	assert.Contains(t, names, "coastal")
	assert.IsIncreasing(t, names)
}
