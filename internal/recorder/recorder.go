package recorder

import "StockPrep/internal/model"

// Recorder persists a journal of pipeline runs.
type Recorder interface {
	RecordRun(run *model.RunSummary) error
	Close() error
}
