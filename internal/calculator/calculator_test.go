package calculator

import (
	"errors"
	"math"
	"testing"

	"StockPrep/internal/model"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f, diff=%.6f)", label, got, want, tol, math.Abs(got-want))
	}
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func rising(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func TestCalculateSMA_Period3(t *testing.T) {
	// Prices: 100, 102, 104, 103, 105
	ma, err := CalculateSMA([]float64{100, 102, 104, 103, 105}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertClose(t, "SMA(3)", ma, 104.0, 1e-9)

	_, err = CalculateSMA([]float64{1, 2}, 3)
	var ide *model.InsufficientDataError
	if !errors.As(err, &ide) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if _, err := CalculateSMA([]float64{1}, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestSMASeries_WarmUpAndValues(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15, 16}
	got, err := SMASeries(prices, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 4; i++ {
		if got[i].Valid {
			t.Errorf("index %d: expected undefined, got %.4f", i, got[i].Float)
		}
	}
	want := map[int]float64{4: 12, 5: 13, 6: 14}
	for i, w := range want {
		if !got[i].Valid {
			t.Fatalf("index %d: expected defined", i)
		}
		assertClose(t, "SMA(5)", got[i].Float, w, 1e-9)
	}
}

func TestSMASeries_MatchesTrailingMean(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 50 + 10*math.Sin(float64(i)/3)
	}
	got, err := SMASeries(prices, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 19; i < len(prices); i++ {
		sum := 0.0
		for j := i - 19; j <= i; j++ {
			sum += prices[j]
		}
		assertClose(t, "MA20", got[i].Float, sum/20, 1e-9)
	}
}

func TestRSISeries_FlatMarket(t *testing.T) {
	got, err := RSISeries(constant(30, 100), 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 14; i++ {
		if got[i].Valid {
			t.Errorf("index %d: expected undefined", i)
		}
	}
	for i := 14; i < 30; i++ {
		if !got[i].Valid || got[i].Float != FlatRSI {
			t.Errorf("index %d: got %+v, want %.0f", i, got[i], FlatRSI)
		}
	}
}

func TestRSISeries_StrictlyRising(t *testing.T) {
	got, err := RSISeries(rising(20), 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 14; i < 20; i++ {
		if got[i].Float != 100 {
			t.Errorf("index %d: got %.4f, want 100", i, got[i].Float)
		}
	}
}

func TestRSISeries_StrictlyFalling(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}
	got, _ := RSISeries(closes, 14)
	assertClose(t, "RSI falling", got[19].Float, 0, 1e-9)
}

func TestRSISeries_WilderHandCalculated(t *testing.T) {
	// period 3: changes +2, -1, +3, -2
	// seed at index 3: avgGain=5/3, avgLoss=1/3 -> RS=5 -> RSI=83.3333
	// index 4: avgGain=(5/3*2+0)/3=10/9, avgLoss=(1/3*2+2)/3=8/9 -> RS=1.25 -> RSI=55.5556
	closes := []float64{10, 12, 11, 14, 12}
	got, err := RSISeries(closes, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertClose(t, "RSI seed", got[3].Float, 83.333333, 1e-4)
	assertClose(t, "RSI smoothed", got[4].Float, 55.555556, 1e-4)
}

func TestRSISeries_Bounded(t *testing.T) {
	closes := make([]float64, 200)
	x := 100.0
	for i := range closes {
		// deterministic zig-zag with drift
		x += math.Sin(float64(i)*1.7)*3 + 0.1
		closes[i] = x
	}
	got, _ := RSISeries(closes, 14)
	for i, v := range got {
		if v.Valid && (v.Float < 0 || v.Float > 100) {
			t.Errorf("index %d: RSI %.4f out of [0,100]", i, v.Float)
		}
	}
}

func TestCalculateRSI_Insufficient(t *testing.T) {
	_, err := CalculateRSI(rising(14), 14)
	var ide *model.InsufficientDataError
	if !errors.As(err, &ide) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	rsi, err := CalculateRSI(rising(15), 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertClose(t, "RSI", rsi, 100, 1e-9)
}

func TestEMASeries_Recursion(t *testing.T) {
	// span 3 -> alpha 0.5
	got, err := EMASeries([]float64{2, 4, 8}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertClose(t, "EMA[0]", got[0], 2, 1e-12)
	assertClose(t, "EMA[1]", got[1], 3, 1e-12)
	assertClose(t, "EMA[2]", got[2], 5.5, 1e-12)
}

func TestMACDSeries_WarmUp(t *testing.T) {
	p := model.MACDParams{Fast: 3, Slow: 5, Signal: 2}
	res, err := MACDSeries(rising(10), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 4; i++ {
		if res.MACD[i].Valid {
			t.Errorf("MACD index %d should be undefined", i)
		}
	}
	if !res.MACD[4].Valid {
		t.Fatal("MACD index 4 should be defined")
	}
	if res.Signal[4].Valid {
		t.Error("signal index 4 should be undefined")
	}
	if !res.Signal[5].Valid {
		t.Fatal("signal index 5 should be defined")
	}
	assertClose(t, "hist", res.Hist[5].Float, res.MACD[5].Float-res.Signal[5].Float, 1e-12)

	if _, err := MACDSeries(rising(10), model.MACDParams{Fast: 5, Slow: 3, Signal: 2}); err == nil {
		t.Error("expected error when fast >= slow")
	}
}

func TestMACDSeries_MatchesRecursiveEWM(t *testing.T) {
	// reference: ewm(span, adjust=False) on closes 100..159, signal over the full line
	res, err := MACDSeries(rising(60), model.MACDParams{Fast: 12, Slow: 26, Signal: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Signal[32].Valid {
		t.Error("signal index 32 should be undefined")
	}
	assertClose(t, "MACD[33]", res.MACD[33].Float, 6.036080, 1e-6)
	assertClose(t, "signal[33]", res.Signal[33].Float, 5.625638, 1e-6)
	assertClose(t, "signal[40]", res.Signal[40].Float, 6.177946, 1e-6)
	assertClose(t, "hist[33]", res.Hist[33].Float, 0.410442, 1e-6)
}

func TestMACDSeries_FlatIsZero(t *testing.T) {
	res, err := MACDSeries(constant(40, 100), model.MACDParams{Fast: 12, Slow: 26, Signal: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertClose(t, "MACD", res.MACD[39].Float, 0, 1e-12)
	assertClose(t, "hist", res.Hist[39].Float, 0, 1e-12)
}

func TestVolatilitySeries(t *testing.T) {
	returns := []model.Value{model.None, model.Some(0.01), model.Some(-0.01), model.Some(0.01), model.Some(-0.01)}
	got, err := VolatilitySeries(returns, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 4; i++ {
		if got[i].Valid {
			t.Errorf("index %d: expected undefined", i)
		}
	}
	// sample std of {0.01,-0.01,0.01,-0.01}: mean 0, ss 4e-4, /3
	assertClose(t, "vol", got[4].Float, math.Sqrt(4e-4/3), 1e-12)

	if _, err := VolatilitySeries(returns, 1); err == nil {
		t.Error("expected error for window < 2")
	}
}

func TestCalculateRange(t *testing.T) {
	bars := []model.Bar{
		{High: 10, Low: 5},
		{High: 20, Low: 8},
		{High: 12, Low: 9},
	}
	h, l, err := CalculateRange(bars, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h != 20 || l != 5 {
		t.Errorf("full range: got (%.0f,%.0f), want (20,5)", h, l)
	}
	h, l, _ = CalculateRange(bars, 1)
	if h != 12 || l != 9 {
		t.Errorf("lookback 1: got (%.0f,%.0f), want (12,9)", h, l)
	}
	if _, _, err := CalculateRange(nil, 5); err == nil {
		t.Error("expected error for empty bars")
	}
}

func TestCalculatePosition(t *testing.T) {
	tests := []struct {
		cur, high, low, want float64
	}{
		{15, 20, 10, 0.5},
		{25, 20, 10, 1},
		{5, 20, 10, 0},
		{10, 10, 10, 0.5},
	}
	for _, tt := range tests {
		got, err := CalculatePosition(tt.cur, tt.high, tt.low)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertClose(t, "position", got, tt.want, 1e-12)
	}
	if _, err := CalculatePosition(1, 1, 2); err == nil {
		t.Error("expected error when high < low")
	}
}
