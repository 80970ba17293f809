package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"StockPrep/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// FormatRunSummary formats one symbol run for the terminal.
func FormatRunSummary(s *model.RunSummary) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(s.Symbol))
	b.WriteString(" ")
	b.WriteString(status(s.Status))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s", s.Duration.Round(time.Millisecond))))
	b.WriteString("\n")

	if s.Status == model.RunFailed {
		b.WriteString(fmt.Sprintf("  error: %v\n", s.Err))
		return b.String()
	}
	if s.Status == model.RunSkipped {
		b.WriteString(fmt.Sprintf("  unchanged: %s\n", s.InputPath))
		return b.String()
	}

	st := s.Stats
	b.WriteString(fmt.Sprintf("  rows: %d read, %d written (%d duplicates, %d filled, %d dropped)\n",
		st.RowsRead, st.RowsOut, st.Duplicates, st.Filled, st.Dropped))
	b.WriteString(fmt.Sprintf("  range: %s .. %s", s.FirstDate.Format("2006-01-02"), s.LastDate.Format("2006-01-02")))
	if s.MissingSessions > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("  (%d missing sessions)", s.MissingSessions)))
	}
	b.WriteString("\n")
	if st.Outliers > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("  outliers flagged: %d", st.Outliers)))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("  close: %.2f  high/low: %.2f/%.2f  position: %.0f%%\n",
		s.LatestClose, s.PeriodHigh, s.PeriodLow, s.Position*100))
	if s.Signal.Commentary != "" {
		b.WriteString(fmt.Sprintf("  signal: %s\n", s.Signal.Commentary))
	}
	if s.OutputPath != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  -> %s", s.OutputPath)))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatBatch formats every run followed by a totals line.
func FormatBatch(runs []*model.RunSummary) string {
	var b strings.Builder
	var ok, failed, skipped int
	for _, r := range runs {
		b.WriteString(FormatRunSummary(r))
		switch r.Status {
		case model.RunOK:
			ok++
		case model.RunFailed:
			failed++
		case model.RunSkipped:
			skipped++
		}
	}
	b.WriteString(titleStyle.Render("Summary"))
	b.WriteString(fmt.Sprintf(": %d ok, %d failed, %d skipped\n", ok, failed, skipped))
	return b.String()
}

func status(s model.RunStatus) string {
	switch s {
	case model.RunOK:
		return okStyle.Render(string(s))
	case model.RunSkipped:
		return dimStyle.Render(string(s))
	default:
		return errStyle.Render(string(s))
	}
}
