// Package pipeline runs Loader -> Preprocessor -> Indicator Engine -> Writer
// for one symbol, and for every symbol file in a directory.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"StockPrep/internal/analysis"
	"StockPrep/internal/calculator"
	"StockPrep/internal/config"
	"StockPrep/internal/indicator"
	"StockPrep/internal/loader"
	"StockPrep/internal/manifest"
	"StockPrep/internal/metrics"
	"StockPrep/internal/model"
	"StockPrep/internal/preprocess"
	"StockPrep/internal/recorder"
	"StockPrep/internal/sentiment"
	"StockPrep/internal/session"
	"StockPrep/internal/strategy"
	"StockPrep/internal/writer"
)

// Pipeline holds the immutable configuration and the collaborators shared by
// symbol runs. Recorder and Metrics are safe for concurrent use.
type Pipeline struct {
	Cfg      *config.Config
	Writer   *writer.CSVWriter
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
	Manifest *manifest.Manifest
}

// New creates a Pipeline. rec may be nil (noop) and m may be nil (no metrics).
func New(cfg *config.Config, rec recorder.Recorder, m *metrics.Metrics) *Pipeline {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Pipeline{
		Cfg:      cfg,
		Writer:   writer.NewCSVWriter(cfg.Output.FloatPrecision),
		Recorder: rec,
		Metrics:  m,
	}
}

// Result is one symbol's outcome. Series is nil unless the run succeeded.
type Result struct {
	Summary *model.RunSummary
	Series  *model.EnrichedSeries
}

// Run processes one source and writes its processed file into outDir.
// A failed run returns a summary with Status RunFailed and the error.
func (p *Pipeline) Run(ctx context.Context, src loader.Source, outDir string) (*Result, error) {
	start := time.Now()
	sum := &model.RunSummary{
		RunID:     uuid.NewString(),
		InputPath: src.Name(),
		StartedAt: start,
	}
	if cs, ok := src.(*loader.CSVSource); ok {
		sum.InputPath = cs.Path
		sum.Symbol = cs.Symbol
	}

	series, err := p.run(ctx, src, outDir, sum)
	sum.Duration = time.Since(start)
	if err != nil {
		sum.Status = model.RunFailed
		sum.Err = err
		log.Printf("[ERROR] %s: %v", sum.InputPath, err)
	} else {
		sum.Status = model.RunOK
		log.Printf("[INFO] %s: %d rows -> %s", sum.Symbol, sum.Stats.RowsOut, sum.OutputPath)
	}
	p.finish(sum)
	return &Result{Summary: sum, Series: series}, err
}

func (p *Pipeline) run(ctx context.Context, src loader.Source, outDir string, sum *model.RunSummary) (*model.EnrichedSeries, error) {
	raw, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if sum.Symbol == "" {
		sum.Symbol = raw.Symbol
	}

	clean, stats, err := preprocess.Clean(raw, preprocess.FromConfig(p.Cfg.Enrich))
	sum.Stats = stats
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	if stats.Duplicates > 0 {
		log.Printf("[WARN] %s: %d duplicate dates resolved (%s)", clean.Symbol, stats.Duplicates, p.Cfg.Enrich.DuplicatePolicy)
	}

	enriched, err := indicator.Enrich(clean, p.Cfg.Enrich)
	if err != nil {
		return nil, fmt.Errorf("enrich: %w", err)
	}

	out, err := p.Writer.WriteFile(outDir, enriched)
	if err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	sum.OutputPath = out

	p.summarize(sum, clean, enriched)
	return enriched, nil
}

// summarize fills the descriptive fields of sum from a successful run.
func (p *Pipeline) summarize(sum *model.RunSummary, clean *model.PriceSeries, s *model.EnrichedSeries) {
	bars := clean.Bars
	sum.FirstDate = bars[0].Date
	sum.LastDate = bars[len(bars)-1].Date
	last := s.Last()
	sum.LatestClose = last.Close
	sum.LatestRSI = last.RSI

	if h, l, err := calculator.CalculateRange(bars, calculator.TradingDaysPerYear); err == nil {
		sum.PeriodHigh, sum.PeriodLow = h, l
		if pos, err := calculator.CalculatePosition(last.Close, h, l); err == nil {
			sum.Position = pos
		} else {
			log.Printf("[WARN] %s: position calculation failed: %v", s.Symbol, err)
		}
	}

	sum.MissingSessions = session.ForSymbol(s.Symbol, p.Cfg.Calendar.MIC).MissingSessions(bars)
	sum.Signal = strategy.Evaluate(s)
}

func (p *Pipeline) finish(sum *model.RunSummary) {
	p.Metrics.ObserveRun(sum)
	if err := p.Recorder.RecordRun(sum); err != nil {
		log.Printf("[ERROR] record run %s: %v", sum.Symbol, err)
	}
}

// ProcessFile runs the pipeline for one CSV file.
func (p *Pipeline) ProcessFile(ctx context.Context, path, outDir string) (*Result, error) {
	src := loader.NewCSVSource(path, loader.Options{LenientNumbers: p.Cfg.Loader.LenientNumbers})
	return p.Run(ctx, src, outDir)
}

// ListInputs returns the raw CSV files of dataDir in name order.
func ListInputs(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".csv") || strings.HasSuffix(name, "_processed.csv") {
			continue
		}
		files = append(files, filepath.Join(dataDir, name))
	}
	sort.Strings(files)
	return files, nil
}

// ProcessDir runs one independent pipeline per CSV file in dataDir, up to
// Cfg.Workers at a time. A failing symbol does not stop the others; only a
// listing failure or cancellation returns an error. Results keep file order.
func (p *Pipeline) ProcessDir(ctx context.Context, dataDir, outDir string) ([]*Result, error) {
	files, err := ListInputs(dataDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		log.Printf("[WARN] no csv files in %s", dataDir)
	}

	workers := p.Cfg.Workers
	if workers < 1 {
		workers = 1
	}
	results := make([]*Result, len(files))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return compact(results), err
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = p.processOne(ctx, path, outDir)
		}(i, path)
	}
	wg.Wait()

	if p.Manifest != nil {
		if err := p.Manifest.Save(p.Cfg.Output.ManifestFile); err != nil {
			log.Printf("[ERROR] save manifest: %v", err)
		}
	}
	if f := p.Cfg.Output.CorrelationFile; f != "" {
		if err := p.writeCorrelation(results, outDir, f); err != nil {
			log.Printf("[ERROR] correlation: %v", err)
		}
	}
	p.Metrics.BatchDone(time.Now())
	return results, nil
}

// processOne skips inputs the manifest marks unchanged, otherwise runs them.
func (p *Pipeline) processOne(ctx context.Context, path, outDir string) *Result {
	info, statErr := os.Stat(path)
	if p.Manifest != nil && p.Cfg.Output.SkipUnchanged && statErr == nil && p.Manifest.Unchanged(path, info, p.Cfg.Fingerprint()) {
		sum := &model.RunSummary{
			RunID:     uuid.NewString(),
			Symbol:    loader.SymbolFromPath(path),
			InputPath: path,
			Status:    model.RunSkipped,
			StartedAt: time.Now(),
		}
		p.Metrics.ObserveRun(sum)
		log.Printf("[INFO] %s unchanged, skipped", path)
		return &Result{Summary: sum}
	}

	res, err := p.ProcessFile(ctx, path, outDir)
	if err == nil && p.Manifest != nil && statErr == nil {
		p.Manifest.Mark(path, info, res.Summary.OutputPath, p.Cfg.Fingerprint())
	}
	return res
}

func (p *Pipeline) writeCorrelation(results []*Result, outDir, path string) error {
	var series []*model.EnrichedSeries
	for _, r := range results {
		if r == nil {
			continue
		}
		switch {
		case r.Series != nil:
			series = append(series, r.Series)
		case r.Summary.Status == model.RunSkipped:
			out := filepath.Join(outDir, writer.FileName(r.Summary.Symbol))
			if p.Manifest != nil {
				if e, ok := p.Manifest.Lookup(r.Summary.InputPath); ok {
					out = e.Output
				}
			}
			s, err := loader.LoadEnriched(out)
			if err != nil {
				log.Printf("[WARN] correlation: reload %s: %v", out, err)
				continue
			}
			series = append(series, s)
		}
	}
	if len(series) == 0 {
		return nil
	}
	m := analysis.CorrelationMatrix(p.Cfg.Analysis.MinOverlap, series...)
	if err := p.Writer.WriteCorrelation(path, m); err != nil {
		return err
	}
	log.Printf("[INFO] correlation matrix of %d symbols -> %s", len(m.Symbols), path)
	return nil
}

// Summaries extracts the run summaries from results.
func Summaries(results []*Result) []*model.RunSummary {
	out := make([]*model.RunSummary, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r.Summary)
		}
	}
	return out
}

func compact(results []*Result) []*Result {
	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// loadProcessed reads every processed file in dir, skipping unreadable ones.
func loadProcessed(dir, purpose string) ([]*model.EnrichedSeries, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*_processed.csv"))
	if err != nil {
		return nil, fmt.Errorf("glob processed files: %w", err)
	}
	sort.Strings(files)
	series := make([]*model.EnrichedSeries, 0, len(files))
	for _, f := range files {
		s, err := loader.LoadEnriched(f)
		if err != nil {
			log.Printf("[WARN] %s: skip %s: %v", purpose, f, err)
			continue
		}
		series = append(series, s)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no processed files in %s", dir)
	}
	return series, nil
}

// Correlate reads every processed file in processedDir and writes the
// correlation matrix of their daily returns to outPath.
func (p *Pipeline) Correlate(processedDir, outPath string) (*analysis.Matrix, error) {
	series, err := loadProcessed(processedDir, "correlation")
	if err != nil {
		return nil, err
	}
	m := analysis.CorrelationMatrix(p.Cfg.Analysis.MinOverlap, series...)
	if err := p.Writer.WriteCorrelation(outPath, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Sentiment scores the headlines in newsPath, joins the daily scores onto the
// processed files in processedDir and writes the merged table to outPath with
// the per-ticker sentiment and return correlations beside it.
func (p *Pipeline) Sentiment(newsPath, processedDir, outPath string) (*sentiment.Report, error) {
	news, err := sentiment.LoadNews(newsPath)
	if err != nil {
		return nil, fmt.Errorf("load news: %w", err)
	}
	series, err := loadProcessed(processedDir, "sentiment")
	if err != nil {
		return nil, err
	}
	daily := sentiment.Aggregate(news)
	rows := sentiment.Merge(series, daily)
	rep := sentiment.Correlate(rows, p.Cfg.Sentiment.MinObservations)

	corrPath, err := p.Writer.WriteSentiment(outPath, rows, rep)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] sentiment: %d headlines over %d ticker-days, %d rows -> %s, correlations -> %s",
		len(news), len(daily), len(rows), outPath, corrPath)
	return rep, nil
}
