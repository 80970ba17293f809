package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"StockPrep/internal/config"
	"StockPrep/internal/manifest"
	"StockPrep/internal/metrics"
	"StockPrep/internal/model"
	"StockPrep/internal/pipeline"
	"StockPrep/internal/recorder"
	"StockPrep/internal/report"
	"StockPrep/internal/scheduler"
)

var version = "dev"

// newRootCmd creates the root command.
func newRootCmd() *cobra.Command {
	var cfgPath string
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:   "stockprep",
		Short: "StockPrep - stock price cleaning and indicator enrichment",
		Long: `StockPrep reads raw daily OHLCV tables, cleans them, derives moving averages,
daily returns, RSI and optional volatility/MACD columns, and writes one
processed CSV per symbol.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			if cfgPath == "" {
				cfgPath = "configs/config.yaml"
				if v := os.Getenv("CONFIG_PATH"); v != "" {
					cfgPath = v
				}
			}
			var err error
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Configuration file path (default configs/config.yaml or $CONFIG_PATH)")

	cfgFn := func() *config.Config { return cfg }
	rootCmd.AddCommand(newRunCmd(cfgFn))
	rootCmd.AddCommand(newEnrichCmd(cfgFn))
	rootCmd.AddCommand(newCorrelateCmd(cfgFn))
	rootCmd.AddCommand(newSentimentCmd(cfgFn))
	rootCmd.AddCommand(newWatchCmd(cfgFn))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// newRunCmd processes every raw file in the data directory.
func newRunCmd(cfgFn func() *config.Config) *cobra.Command {
	var dataDir, outDir string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process every CSV in the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cfgFn()
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if outDir != "" {
				cfg.OutDir = outDir
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}

			p, closeFn, err := buildPipeline(cfg, nil)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			results, err := p.ProcessDir(ctx, cfg.DataDir, cfg.OutDir)
			sums := pipeline.Summaries(results)
			fmt.Println(report.FormatBatch(sums))
			if err != nil {
				return err
			}
			return batchError(sums)
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory of raw <SYMBOL>.csv files")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for processed files")
	return cmd
}

// newEnrichCmd processes a single raw file.
func newEnrichCmd(cfgFn func() *config.Config) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "enrich <file>",
		Short: "Process one raw CSV file",
		Example: `  stockprep enrich data/raw/aapl.csv --out-dir /tmp/out`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cfgFn()
			if outDir != "" {
				cfg.OutDir = outDir
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			p, closeFn, err := buildPipeline(cfg, nil)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := p.ProcessFile(cmd.Context(), args[0], cfg.OutDir)
			fmt.Println(report.FormatRunSummary(res.Summary))
			return err
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for the processed file")
	return cmd
}

// newCorrelateCmd builds the correlation matrix from processed files.
func newCorrelateCmd(cfgFn func() *config.Config) *cobra.Command {
	var processedDir, out string
	cmd := &cobra.Command{
		Use:   "correlate",
		Short: "Write the daily-return correlation matrix of processed files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cfgFn()
			if processedDir == "" {
				processedDir = cfg.OutDir
			}
			if out == "" {
				out = cfg.Output.CorrelationFile
			}
			if out == "" {
				out = filepath.Join(processedDir, "correlation.csv")
			}
			p := pipeline.New(cfg, nil, nil)
			m, err := p.Correlate(processedDir, out)
			if err != nil {
				return err
			}
			log.Printf("[INFO] correlation matrix of %d symbols -> %s", len(m.Symbols), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&processedDir, "processed-dir", "", "Directory of *_processed.csv files (default out_dir)")
	cmd.Flags().StringVar(&out, "out", "", "Output CSV path")
	return cmd
}

// newSentimentCmd joins headline sentiment onto processed prices.
func newSentimentCmd(cfgFn func() *config.Config) *cobra.Command {
	var news, processedDir, out string
	cmd := &cobra.Command{
		Use:   "sentiment",
		Short: "Score news headlines and correlate daily sentiment with returns",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cfgFn()
			if news == "" {
				news = cfg.Sentiment.NewsFile
			}
			if processedDir == "" {
				processedDir = cfg.OutDir
			}
			if out == "" {
				out = cfg.Sentiment.OutFile
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			p := pipeline.New(cfg, nil, nil)
			rep, err := p.Sentiment(news, processedDir, out)
			if err != nil {
				return err
			}
			if g := rep.Global; g.R.Valid {
				log.Printf("[INFO] global Pearson r = %.4f, p = %.3g (n = %d)", g.R.Float, g.P.Float, g.N)
			} else {
				log.Printf("[WARN] not enough data for a global Pearson correlation (n = %d)", g.N)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&news, "news", "", "News CSV with date, stock and headline columns")
	cmd.Flags().StringVar(&processedDir, "processed-dir", "", "Directory of *_processed.csv files (default out_dir)")
	cmd.Flags().StringVar(&out, "out", "", "Merged output CSV path")
	return cmd
}

// newWatchCmd re-runs the batch on the configured cron schedule.
func newWatchCmd(cfgFn func() *config.Config) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the batch on a cron schedule and serve metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cfgFn()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			log.Println("[INFO] StockPrep watch starting...")

			m := metrics.New()
			p, closeFn, err := buildPipeline(cfg, m)
			if err != nil {
				return err
			}
			defer closeFn()

			// Context for graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if cfg.Metrics.Addr != "" {
				go func() {
					if err := m.Serve(ctx, cfg.Metrics.Addr); err != nil {
						log.Printf("[ERROR] metrics server: %v", err)
					}
				}()
			}

			sched := scheduler.NewScheduler(ctx, p, cfg.DataDir, cfg.OutDir)
			sched.OnBatch = func(sums []*model.RunSummary) {
				fmt.Println(report.FormatBatch(sums))
			}
			if err := sched.Register(cfg.Schedule.Cron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if runOnStart || os.Getenv("RUN_ON_START") == "true" {
				log.Println("[INFO] run on start enabled, executing batch now")
				go sched.RunNow()
			}

			log.Println("[INFO] StockPrep is watching. Press Ctrl+C to stop.")

			// Wait for shutdown signal
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			log.Println("[INFO] shutdown signal received, stopping...")
			cancel()
			return nil
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "Run one batch immediately")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("stockprep %s\n", version)
		},
	}
}

// buildPipeline wires the recorder and manifest configured in cfg.
func buildPipeline(cfg *config.Config, m *metrics.Metrics) (*pipeline.Pipeline, func(), error) {
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	p := pipeline.New(cfg, rec, m)
	if cfg.Output.SkipUnchanged {
		man, err := manifest.Load(cfg.Output.ManifestFile)
		if err != nil {
			rec.Close()
			return nil, nil, fmt.Errorf("load manifest: %w", err)
		}
		p.Manifest = man
	}
	closeFn := func() {
		if err := rec.Close(); err != nil {
			log.Printf("[WARN] close recorder: %v", err)
		}
	}
	return p, closeFn, nil
}

// batchError reports failed symbols as a non-nil error so the exit code
// reflects them.
func batchError(sums []*model.RunSummary) error {
	failed := 0
	for _, s := range sums {
		if s.Status == model.RunFailed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d symbols failed", failed, len(sums))
	}
	return nil
}
