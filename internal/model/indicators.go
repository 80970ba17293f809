package model

import "fmt"

// EnrichedRecord is a cleaned bar extended with derived indicators.
type EnrichedRecord struct {
	Bar
	MA         []Value // aligned with EnrichedSeries.MAWindows
	RSI        Value
	Volatility Value
	MACD       Value
	MACDSignal Value
	MACDHist   Value
}

// MACDParams are the EMA spans used for MACD. Zero Fast disables MACD.
type MACDParams struct {
	Fast   int
	Slow   int
	Signal int
}

// EnrichedSeries is the indicator engine output for one symbol.
type EnrichedSeries struct {
	Symbol           string
	MAWindows        []int
	RSIWindow        int
	VolatilityWindow int
	MACD             MACDParams
	Records          []EnrichedRecord
}

// maIndex returns the position of window in MAWindows, or -1.
func (s *EnrichedSeries) maIndex(window int) int {
	for i, w := range s.MAWindows {
		if w == window {
			return i
		}
	}
	return -1
}

// MAValue returns the moving-average cell for window at index i.
func (s *EnrichedSeries) MAValue(window, i int) (Value, bool) {
	k := s.maIndex(window)
	if k < 0 || i < 0 || i >= len(s.Records) {
		return None, false
	}
	return s.Records[i].MA[k], true
}

// MAAt returns the moving average for window at index i.
func (s *EnrichedSeries) MAAt(window, i int) (float64, error) {
	v, ok := s.MAValue(window, i)
	if !ok {
		return 0, fmt.Errorf("moving average window %d at index %d not computed", window, i)
	}
	if !v.Valid {
		return 0, &InsufficientDataError{Indicator: MAColumn(window), Index: i, Required: window}
	}
	return v.Float, nil
}

// RSIAt returns the RSI at index i.
func (s *EnrichedSeries) RSIAt(i int) (float64, error) {
	if i < 0 || i >= len(s.Records) {
		return 0, fmt.Errorf("index %d out of range [0,%d)", i, len(s.Records))
	}
	v := s.Records[i].RSI
	if !v.Valid {
		return 0, &InsufficientDataError{Indicator: RSIColumn(s.RSIWindow), Index: i, Required: s.RSIWindow + 1}
	}
	return v.Float, nil
}

// Last returns the most recent record, or nil for an empty series.
func (s *EnrichedSeries) Last() *EnrichedRecord {
	if len(s.Records) == 0 {
		return nil
	}
	return &s.Records[len(s.Records)-1]
}

// MAColumn is the output column name for a moving average window.
func MAColumn(window int) string { return fmt.Sprintf("MA%d", window) }

// RSIColumn is the output column name for an RSI window.
func RSIColumn(window int) string { return fmt.Sprintf("RSI%d", window) }

// VolatilityColumn is the output column name for rolling return volatility.
func VolatilityColumn(window int) string { return fmt.Sprintf("Volatility%d", window) }
