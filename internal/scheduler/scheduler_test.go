package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StockPrep/internal/config"
	"StockPrep/internal/model"
	"StockPrep/internal/pipeline"
)

func writeRaw(t *testing.T, path string, n int) {
	t.Helper()
	var b strings.Builder
	b.WriteString("Date,Open,High,Low,Close,Adj Close,Volume\n")
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := 10 + float64(i%5)
		fmt.Fprintf(&b, "%s,%g,%g,%g,%g,%g,%d\n", day.AddDate(0, 0, i).Format("2006-01-02"), c, c, c, c, c, 100)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunNow(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeRaw(t, filepath.Join(in, "xyz.csv"), 25)

	p := pipeline.New(config.Default(), nil, nil)
	s := NewScheduler(context.Background(), p, in, out)
	var got []*model.RunSummary
	s.OnBatch = func(sums []*model.RunSummary) { got = sums }

	if !s.RunNow() {
		t.Fatal("RunNow() = false, want true")
	}
	if len(got) != 1 || got[0].Status != model.RunOK {
		t.Fatalf("batch summaries = %+v", got)
	}
	if _, err := os.Stat(filepath.Join(out, "XYZ_processed.csv")); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestRunNow_SkipsWhileRunning(t *testing.T) {
	s := NewScheduler(context.Background(), pipeline.New(config.Default(), nil, nil), t.TempDir(), t.TempDir())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RunNow() {
		t.Error("RunNow() = true while a batch holds the lock")
	}
}

func TestRegister(t *testing.T) {
	s := NewScheduler(context.Background(), pipeline.New(config.Default(), nil, nil), t.TempDir(), t.TempDir())
	if err := s.Register("0 30 18 * * 1-5"); err != nil {
		t.Errorf("Register(valid) error: %v", err)
	}
	if err := s.Register("not a cron"); err == nil {
		t.Error("Register(invalid) expected error")
	}
	if n := len(s.Cron.Entries()); n != 1 {
		t.Errorf("entries = %d, want 1", n)
	}
}
