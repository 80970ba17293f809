package calculator

import (
	"errors"

	"StockPrep/internal/model"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, &model.InsufficientDataError{Indicator: model.MAColumn(period), Index: len(prices) - 1, Required: period}
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// SMASeries returns the trailing simple moving average at every index.
// Indexes before period-1 are undefined.
func SMASeries(prices []float64, period int) ([]model.Value, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]model.Value, len(prices))
	for i := period - 1; i < len(prices); i++ {
		ma, err := CalculateSMA(prices[:i+1], period)
		if err != nil {
			return nil, err
		}
		out[i] = model.Some(ma)
	}
	return out, nil
}
