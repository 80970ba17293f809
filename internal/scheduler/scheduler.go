package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"StockPrep/internal/model"
	"StockPrep/internal/pipeline"

	"github.com/robfig/cron/v3"
)

// Scheduler re-runs the batch pipeline on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Pipeline *pipeline.Pipeline
	DataDir  string
	OutDir   string
	Ctx      context.Context
	// OnBatch, if set, receives the summaries of every finished batch.
	OnBatch func([]*model.RunSummary)

	mu sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, p *pipeline.Pipeline, dataDir, outDir string) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Pipeline: p,
		DataDir:  dataDir,
		OutDir:   outDir,
		Ctx:      ctx,
	}
}

// Register adds the batch task under a six-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.batchTask); err != nil {
		return fmt.Errorf("register batch task: %w", err)
	}
	log.Printf("[INFO] batch scheduled: %s", spec)
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running batch to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes one batch immediately (for manual trigger / run on start).
// It reports false if a batch was already running.
func (s *Scheduler) RunNow() bool {
	return s.batch()
}

func (s *Scheduler) batchTask() {
	if !s.batch() {
		log.Println("[WARN] previous batch still running, tick skipped")
	}
}

func (s *Scheduler) batch() bool {
	if !s.mu.TryLock() {
		return false
	}
	defer s.mu.Unlock()

	log.Println("[INFO] running batch")
	results, err := s.Pipeline.ProcessDir(s.Ctx, s.DataDir, s.OutDir)
	if err != nil {
		log.Printf("[ERROR] batch: %v", err)
	}
	sums := pipeline.Summaries(results)
	failed := 0
	for _, sum := range sums {
		if sum.Status == model.RunFailed {
			failed++
		}
	}
	log.Printf("[INFO] batch done: %d symbols, %d failed", len(sums), failed)
	if s.OnBatch != nil {
		s.OnBatch(sums)
	}
	return true
}
