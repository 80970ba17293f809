// Package indicator enriches a clean PriceSeries with moving averages,
// RSI, return volatility and MACD.
package indicator

import (
	"fmt"

	"StockPrep/internal/calculator"
	"StockPrep/internal/config"
	"StockPrep/internal/model"
)

// Enrich computes every configured indicator over series. Each indicator is a
// single forward pass over closes or returns, so no value depends on later
// records. Undefined cells stay undefined.
func Enrich(series *model.PriceSeries, cfg config.Enrich) (*model.EnrichedSeries, error) {
	if series == nil || len(series.Bars) == 0 {
		return nil, &model.InvalidInputError{Reason: "empty price series"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("enrich %s: %w", series.Symbol, err)
	}

	closes := series.Closes()
	n := len(closes)

	out := &model.EnrichedSeries{
		Symbol:           series.Symbol,
		MAWindows:        append([]int(nil), cfg.MAWindows...),
		RSIWindow:        cfg.RSIWindow,
		VolatilityWindow: cfg.VolatilityWindow,
		MACD:             model.MACDParams{Fast: cfg.MACD.Fast, Slow: cfg.MACD.Slow, Signal: cfg.MACD.Signal},
		Records:          make([]model.EnrichedRecord, n),
	}
	for i, b := range series.Bars {
		out.Records[i] = model.EnrichedRecord{Bar: b, MA: make([]model.Value, len(cfg.MAWindows))}
	}

	for k, w := range cfg.MAWindows {
		ma, err := calculator.SMASeries(closes, w)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", series.Symbol, model.MAColumn(w), err)
		}
		for i := range ma {
			out.Records[i].MA[k] = ma[i]
		}
	}

	rsi, err := calculator.RSISeries(closes, cfg.RSIWindow)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", series.Symbol, model.RSIColumn(cfg.RSIWindow), err)
	}
	for i := range rsi {
		out.Records[i].RSI = rsi[i]
	}

	if cfg.VolatilityWindow >= 2 {
		vol, err := calculator.VolatilitySeries(series.Returns(), cfg.VolatilityWindow)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", series.Symbol, model.VolatilityColumn(cfg.VolatilityWindow), err)
		}
		for i := range vol {
			out.Records[i].Volatility = vol[i]
		}
	} else {
		out.VolatilityWindow = 0
	}

	if out.MACD.Fast > 0 {
		macd, err := calculator.MACDSeries(closes, out.MACD)
		if err != nil {
			return nil, fmt.Errorf("%s MACD: %w", series.Symbol, err)
		}
		for i := 0; i < n; i++ {
			out.Records[i].MACD = macd.MACD[i]
			out.Records[i].MACDSignal = macd.Signal[i]
			out.Records[i].MACDHist = macd.Hist[i]
		}
	}

	return out, nil
}
