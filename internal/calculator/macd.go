package calculator

import (
	"errors"

	"StockPrep/internal/model"
)

// EMASeries runs the recursive exponential moving average with
// alpha = 2/(span+1), seeded with the first value. Every index is returned;
// callers decide how much warm-up to hide.
func EMASeries(values []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, errors.New("span must be positive")
	}
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out, nil
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}

// MACDResult holds the MACD line, its signal line and the histogram.
type MACDResult struct {
	MACD   []model.Value
	Signal []model.Value
	Hist   []model.Value
}

// MACDSeries computes MACD = EMA(fast) - EMA(slow) over closes.
// The signal line is the EMA of the whole MACD line from index 0. The line is
// reported from index slow-1, the signal and histogram from slow+signal-2.
func MACDSeries(closes []float64, p model.MACDParams) (*MACDResult, error) {
	if p.Fast <= 0 || p.Slow <= 0 || p.Signal <= 0 {
		return nil, errors.New("macd spans must be positive")
	}
	if p.Fast >= p.Slow {
		return nil, errors.New("macd fast span must be shorter than slow span")
	}
	n := len(closes)
	res := &MACDResult{
		MACD:   make([]model.Value, n),
		Signal: make([]model.Value, n),
		Hist:   make([]model.Value, n),
	}
	fast, err := EMASeries(closes, p.Fast)
	if err != nil {
		return nil, err
	}
	slow, err := EMASeries(closes, p.Slow)
	if err != nil {
		return nil, err
	}

	line := make([]float64, n)
	for i := range line {
		line[i] = fast[i] - slow[i]
	}
	sig, err := EMASeries(line, p.Signal)
	if err != nil {
		return nil, err
	}
	for i := p.Slow - 1; i < n; i++ {
		res.MACD[i] = model.Some(line[i])
	}
	for i := p.Slow + p.Signal - 2; i < n; i++ {
		res.Signal[i] = model.Some(sig[i])
		res.Hist[i] = model.Some(line[i] - sig[i])
	}
	return res, nil
}
