package calculator

import (
	"errors"
	"math"

	"StockPrep/internal/model"
)

// TradingDaysPerYear is the lookback used for the 52-week range.
const TradingDaysPerYear = 252

// CalculateRange scans the most recent lookback bars and returns the highest
// high and lowest low. A non-positive lookback scans every bar.
func CalculateRange(bars []model.Bar, lookback int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	n := len(bars)
	start := 0
	if lookback > 0 && n > lookback {
		start = n - lookback
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return high, low, nil
}

// CalculatePosition returns where the current price sits within the range (0.0~1.0).
func CalculatePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
