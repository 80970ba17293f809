package calculator

import (
	"errors"

	"StockPrep/internal/model"
)

// FlatRSI is reported when neither gains nor losses occurred in the window.
const FlatRSI = 50.0

// RSISeries computes the Wilder-smoothed RSI at every index of closes.
// The first value is at index period, seeded with simple averages of the
// first period gains and losses; earlier indexes are undefined.
func RSISeries(closes []float64, period int) ([]model.Value, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]model.Value, len(closes))
	if len(closes) < period+1 {
		return out, nil
	}

	// Initial average gain/loss over the first `period` changes
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = model.Some(rsiFromAverages(avgGain, avgLoss))

	// Wilder smoothing for remaining bars
	for i := period + 1; i < len(closes); i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = model.Some(rsiFromAverages(avgGain, avgLoss))
	}
	return out, nil
}

// CalculateRSI returns the latest Wilder RSI over the given period.
// Requires at least period+1 closes.
func CalculateRSI(closes []float64, period int) (float64, error) {
	series, err := RSISeries(closes, period)
	if err != nil {
		return 0, err
	}
	if len(series) == 0 || !series[len(series)-1].Valid {
		return 0, &model.InsufficientDataError{Indicator: model.RSIColumn(period), Index: len(closes) - 1, Required: period + 1}
	}
	return series[len(series)-1].Float, nil
}

func splitChange(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

// rsiFromAverages maps average gain/loss to RSI. A window with no losses is
// 100, and a window with neither gains nor losses is FlatRSI.
func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return FlatRSI
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
