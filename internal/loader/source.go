package loader

import (
	"context"

	"StockPrep/internal/model"
)

// Source yields the raw price table of one symbol.
type Source interface {
	Load(ctx context.Context) (*model.RawSeries, error)
	Name() string
}
