package model

import "time"

// RawBar is one row of a source price table before cleaning.
// A nil field means the cell was empty or a null token.
type RawBar struct {
	Date     time.Time
	Open     *float64
	High     *float64
	Low      *float64
	Close    *float64
	AdjClose *float64
	Volume   *int64
	Line     int // 1-based line in the source file
}

// RawSeries holds the rows of one symbol as read from its source.
type RawSeries struct {
	Symbol string
	Source string
	Bars   []RawBar
}

// Bar is a cleaned daily record.
type Bar struct {
	Date        time.Time
	Open        float64
	High        float64
	Low         float64
	Close       float64
	AdjClose    float64
	Volume      int64
	DailyReturn Value
	Outlier     bool // |DailyReturn| exceeded the configured threshold
	Filled      bool // at least one field was forward-filled
}

// PriceSeries is the date-sorted, de-duplicated series of one symbol.
type PriceSeries struct {
	Symbol string
	Bars   []Bar
}

// Closes returns the close prices in series order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Returns returns the daily returns in series order.
func (s *PriceSeries) Returns() []Value {
	out := make([]Value, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.DailyReturn
	}
	return out
}
