package calculator

import (
	"errors"
	"math"

	"StockPrep/internal/model"
)

// VolatilitySeries returns the sample standard deviation of the trailing
// window returns at every index. An index is defined only when all window
// returns ending there are defined.
func VolatilitySeries(returns []model.Value, window int) ([]model.Value, error) {
	if window < 2 {
		return nil, errors.New("volatility window must be at least 2")
	}
	out := make([]model.Value, len(returns))
	run := 0 // consecutive defined returns ending at i
	for i, r := range returns {
		if !r.Valid {
			run = 0
			continue
		}
		run++
		if run < window {
			continue
		}
		out[i] = model.Some(sampleStd(returns[i-window+1 : i+1]))
	}
	return out, nil
}

func sampleStd(values []model.Value) float64 {
	mean := 0.0
	for _, v := range values {
		mean += v.Float
	}
	mean /= float64(len(values))
	ss := 0.0
	for _, v := range values {
		d := v.Float - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
