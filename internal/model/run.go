package model

import "time"

// CleanStats counts what preprocessing did to a raw series.
type CleanStats struct {
	RowsRead   int
	Duplicates int
	Filled     int
	Dropped    int
	Outliers   int
	RowsOut    int
}

// RunStatus is the outcome of one symbol run.
type RunStatus string

const (
	RunOK      RunStatus = "OK"
	RunFailed  RunStatus = "FAILED"
	RunSkipped RunStatus = "SKIPPED"
)

// RunSummary describes one symbol's pipeline run.
type RunSummary struct {
	RunID           string
	Symbol          string
	InputPath       string
	OutputPath      string
	Status          RunStatus
	Stats           CleanStats
	MissingSessions int
	FirstDate       time.Time
	LastDate        time.Time
	LatestClose     float64
	LatestRSI       Value
	PeriodHigh      float64
	PeriodLow       float64
	Position        float64 // 0.0 ~ 1.0 within [PeriodLow, PeriodHigh]
	Signal          Signal
	StartedAt       time.Time
	Duration        time.Duration
	Err             error
}
