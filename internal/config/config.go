package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FillPolicy decides what happens to a record with a missing OHLCV field.
type FillPolicy string

const (
	FillForward FillPolicy = "forward-fill"
	FillDrop    FillPolicy = "drop"
)

// DuplicatePolicy decides which record survives when dates repeat.
type DuplicatePolicy string

const (
	KeepLast  DuplicatePolicy = "keep-last"
	KeepFirst DuplicatePolicy = "keep-first"
)

// Enrich holds the cleaning and indicator options passed through the pipeline.
type Enrich struct {
	MAWindows              []int           `yaml:"ma_windows"`
	RSIWindow              int             `yaml:"rsi_window"`
	OutlierReturnThreshold float64         `yaml:"outlier_return_threshold"`
	FillPolicy             FillPolicy      `yaml:"fill_policy"`
	DuplicatePolicy        DuplicatePolicy `yaml:"duplicate_policy"`
	VolatilityWindow       int             `yaml:"volatility_window"`
	MACD                   struct {
		Enabled *bool `yaml:"enabled"` // nil means enabled
		Fast    int   `yaml:"fast"`    // 0 disables MACD
		Slow    int   `yaml:"slow"`
		Signal  int   `yaml:"signal"`
	} `yaml:"macd"`
}

// Config holds all application configuration.
type Config struct {
	DataDir string `yaml:"data_dir"`
	OutDir  string `yaml:"out_dir"`
	Workers int    `yaml:"workers"`
	Enrich  Enrich `yaml:"enrich"`
	Loader  struct {
		LenientNumbers bool `yaml:"lenient_numbers"`
	} `yaml:"loader"`
	Output struct {
		FloatPrecision  int    `yaml:"float_precision"` // -1 keeps the shortest exact form
		CorrelationFile string `yaml:"correlation_file"`
		ManifestFile    string `yaml:"manifest_file"`
		SkipUnchanged   bool   `yaml:"skip_unchanged"`
	} `yaml:"output"`
	Analysis struct {
		MinOverlap int `yaml:"min_overlap"`
	} `yaml:"analysis"`
	Sentiment struct {
		NewsFile        string `yaml:"news_file"`
		OutFile         string `yaml:"out_file"`
		MinObservations int    `yaml:"min_observations"`
	} `yaml:"sentiment"`
	Calendar struct {
		MIC string `yaml:"mic"`
	} `yaml:"calendar"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.Output.FloatPrecision = -1
	cfg.applyDefaults()
	return cfg
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Output.FloatPrecision = -1

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	_ = godotenv.Load()

	// Environment variable overrides
	if v := os.Getenv("STOCKPREP_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("STOCKPREP_OUT_DIR"); v != "" {
		cfg.OutDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("SCHEDULE_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("FILL_POLICY"); v != "" {
		cfg.Enrich.FillPolicy = FillPolicy(strings.ToLower(v))
	}
	if v := os.Getenv("OUTLIER_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Enrich.OutlierReturnThreshold = f
		}
	}
	if v := os.Getenv("NEWS_FILE"); v != "" {
		cfg.Sentiment.NewsFile = v
	}
	if v := os.Getenv("STOCKPREP_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data/raw"
	}
	if c.OutDir == "" {
		c.OutDir = "data/processed/price_indicators"
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	if len(c.Enrich.MAWindows) == 0 {
		c.Enrich.MAWindows = []int{20, 50}
	}
	if c.Enrich.RSIWindow == 0 {
		c.Enrich.RSIWindow = 14
	}
	if c.Enrich.OutlierReturnThreshold == 0 {
		c.Enrich.OutlierReturnThreshold = 0.5
	}
	if c.Enrich.FillPolicy == "" {
		c.Enrich.FillPolicy = FillForward
	}
	if c.Enrich.DuplicatePolicy == "" {
		c.Enrich.DuplicatePolicy = KeepLast
	}
	if c.Enrich.VolatilityWindow == 0 {
		c.Enrich.VolatilityWindow = 20
	}
	if m := &c.Enrich.MACD; m.Enabled != nil && !*m.Enabled {
		m.Fast, m.Slow, m.Signal = 0, 0, 0
	} else if m.Fast == 0 && m.Slow == 0 && m.Signal == 0 {
		c.Enrich.MACD.Fast = 12
		c.Enrich.MACD.Slow = 26
		c.Enrich.MACD.Signal = 9
	}
	if c.Analysis.MinOverlap == 0 {
		c.Analysis.MinOverlap = 10
	}
	if c.Output.ManifestFile == "" {
		c.Output.ManifestFile = "data/processed/manifest.json"
	}
	if c.Sentiment.NewsFile == "" {
		c.Sentiment.NewsFile = "data/processed/news_cleaned.csv"
	}
	if c.Sentiment.OutFile == "" {
		c.Sentiment.OutFile = "data/processed/final_merged_dataset.csv"
	}
	if c.Sentiment.MinObservations == 0 {
		c.Sentiment.MinObservations = 10
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 30 18 * * 1-5"
	}
}

// Validate checks that all options are usable.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	if err := c.Enrich.Validate(); err != nil {
		return err
	}
	if c.Analysis.MinOverlap < 2 {
		return fmt.Errorf("analysis.min_overlap must be at least 2")
	}
	if c.Sentiment.MinObservations < 3 {
		return fmt.Errorf("sentiment.min_observations must be at least 3")
	}
	return nil
}

// Validate checks the enrichment options.
func (e *Enrich) Validate() error {
	seen := make(map[int]bool, len(e.MAWindows))
	for _, w := range e.MAWindows {
		if w <= 0 {
			return fmt.Errorf("enrich.ma_windows: window %d must be positive", w)
		}
		if seen[w] {
			return fmt.Errorf("enrich.ma_windows: duplicate window %d", w)
		}
		seen[w] = true
	}
	if e.RSIWindow <= 0 {
		return fmt.Errorf("enrich.rsi_window must be positive")
	}
	if e.VolatilityWindow < 0 {
		return fmt.Errorf("enrich.volatility_window must not be negative")
	}
	switch e.FillPolicy {
	case FillForward, FillDrop:
	default:
		return fmt.Errorf("enrich.fill_policy %q: want %q or %q", e.FillPolicy, FillForward, FillDrop)
	}
	switch e.DuplicatePolicy {
	case KeepLast, KeepFirst:
	default:
		return fmt.Errorf("enrich.duplicate_policy %q: want %q or %q", e.DuplicatePolicy, KeepLast, KeepFirst)
	}
	m := e.MACD
	if m.Fast < 0 {
		return fmt.Errorf("enrich.macd.fast must not be negative")
	}
	if m.Fast > 0 {
		if m.Slow <= 0 || m.Signal <= 0 {
			return fmt.Errorf("enrich.macd: slow and signal must be positive when fast is set")
		}
		if m.Fast >= m.Slow {
			return fmt.Errorf("enrich.macd: fast (%d) must be shorter than slow (%d)", m.Fast, m.Slow)
		}
	}
	return nil
}

// Fingerprint identifies the options that shape a processed file: loader
// leniency, enrichment and float precision. Paths, workers and scheduling are
// not included.
func (c *Config) Fingerprint() string {
	e := c.Enrich
	key := fmt.Sprintf("lenient=%t|ma=%v|rsi=%d|outlier=%g|fill=%s|dup=%s|vol=%d|macd=%d/%d/%d|prec=%d",
		c.Loader.LenientNumbers, e.MAWindows, e.RSIWindow, e.OutlierReturnThreshold,
		e.FillPolicy, e.DuplicatePolicy, e.VolatilityWindow,
		e.MACD.Fast, e.MACD.Slow, e.MACD.Signal, c.Output.FloatPrecision)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}
