package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []int{20, 50}, cfg.Enrich.MAWindows)
	assert.Equal(t, 14, cfg.Enrich.RSIWindow)
	assert.Equal(t, 0.5, cfg.Enrich.OutlierReturnThreshold)
	assert.Equal(t, FillForward, cfg.Enrich.FillPolicy)
	assert.Equal(t, KeepLast, cfg.Enrich.DuplicatePolicy)
	assert.Equal(t, -1, cfg.Output.FloatPrecision)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 10, cfg.Sentiment.MinObservations)
	assert.Equal(t, "data/processed/news_cleaned.csv", cfg.Sentiment.NewsFile)
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
data_dir: in
out_dir: out
enrich:
  ma_windows: [5, 10]
  rsi_window: 7
  fill_policy: drop
output:
  float_precision: 4
sentiment:
  min_observations: 20
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("STOCKPREP_OUT_DIR", "elsewhere")
	t.Setenv("OUTLIER_THRESHOLD", "0.25")
	t.Setenv("NEWS_FILE", "news.csv")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "in", cfg.DataDir)
	assert.Equal(t, "elsewhere", cfg.OutDir)
	assert.Equal(t, []int{5, 10}, cfg.Enrich.MAWindows)
	assert.Equal(t, 7, cfg.Enrich.RSIWindow)
	assert.Equal(t, FillDrop, cfg.Enrich.FillPolicy)
	assert.Equal(t, 0.25, cfg.Enrich.OutlierReturnThreshold)
	assert.Equal(t, 4, cfg.Output.FloatPrecision)
	assert.Equal(t, 20, cfg.Sentiment.MinObservations)
	assert.Equal(t, "news.csv", cfg.Sentiment.NewsFile)
}

func TestValidate_SentimentMinObservations(t *testing.T) {
	cfg := Default()
	cfg.Sentiment.MinObservations = 2
	assert.Error(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("enrich: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnrichValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *Enrich)
		wantErr bool
	}{
		{"defaults", func(e *Enrich) {}, false},
		{"zero window", func(e *Enrich) { e.MAWindows = []int{0} }, true},
		{"duplicate window", func(e *Enrich) { e.MAWindows = []int{20, 20} }, true},
		{"bad fill policy", func(e *Enrich) { e.FillPolicy = "interpolate" }, true},
		{"bad duplicate policy", func(e *Enrich) { e.DuplicatePolicy = "average" }, true},
		{"macd fast >= slow", func(e *Enrich) { e.MACD.Fast = 30 }, true},
		{"macd disabled", func(e *Enrich) { e.MACD.Fast, e.MACD.Slow, e.MACD.Signal = 0, 0, 0 }, false},
		{"macd fast zero disables", func(e *Enrich) { e.MACD.Fast = 0 }, false},
		{"macd negative fast", func(e *Enrich) { e.MACD.Fast = -1 }, true},
		{"macd zero signal", func(e *Enrich) { e.MACD.Signal = 0 }, true},
		{"negative volatility", func(e *Enrich) { e.VolatilityWindow = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Default().Enrich
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_MACDDisable(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{"enabled false", "enrich:\n  macd:\n    enabled: false\n"},
		{"fast zero with spans", "enrich:\n  macd:\n    fast: 0\n    slow: 26\n    signal: 9\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yml), 0o644))
			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, 0, cfg.Enrich.MACD.Fast)
			assert.NoError(t, cfg.Validate())
		})
	}

	// an empty macd block keeps the defaults
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Enrich.MACD.Fast)
	assert.Equal(t, 26, cfg.Enrich.MACD.Slow)
	assert.Equal(t, 9, cfg.Enrich.MACD.Signal)
}

func TestFingerprint(t *testing.T) {
	a, b := Default(), Default()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Workers = 8
	b.DataDir = "elsewhere"
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "paths and workers do not shape output")

	b.Enrich.MAWindows = []int{10, 50}
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	c := Default()
	c.Enrich.FillPolicy = FillDrop
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}
