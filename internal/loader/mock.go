package loader

import (
	"context"
	"time"

	"StockPrep/internal/model"
)

// MockSource returns controllable fixed data for development and testing.
type MockSource struct {
	Symbol string
	Bars   []model.RawBar
	Err    error
	// When Bars is nil, Count bars are generated around Price.
	Price float64
	Count int
	Start time.Time
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Load(_ context.Context) (*model.RawSeries, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	bars := m.Bars
	if bars == nil {
		bars = GenerateBars(m.Start, m.Price, m.Count)
	}
	return &model.RawSeries{Symbol: m.Symbol, Source: "mock", Bars: bars}, nil
}

// GenerateBars builds count consecutive weekday bars drifting slowly around basePrice.
func GenerateBars(start time.Time, basePrice float64, count int) []model.RawBar {
	if start.IsZero() {
		start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	}
	bars := make([]model.RawBar, 0, count)
	day := start
	for i := 0; i < count; i++ {
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, 1)
		}
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars = append(bars, RawBarOf(day, p*0.999, p*1.005, p*0.995, p, p, 1000000))
		bars[i].Line = i + 2
		day = day.AddDate(0, 0, 1)
	}
	return bars
}

// RawBarOf builds a fully populated RawBar.
func RawBarOf(date time.Time, open, high, low, close, adjClose float64, volume int64) model.RawBar {
	return model.RawBar{
		Date:     date,
		Open:     &open,
		High:     &high,
		Low:      &low,
		Close:    &close,
		AdjClose: &adjClose,
		Volume:   &volume,
	}
}
