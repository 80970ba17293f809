package strategy

import (
	"testing"
	"time"

	"StockPrep/internal/model"
)

func seriesWithLast(close float64, rsi, ma20, ma50 model.Value) *model.EnrichedSeries {
	rec := model.EnrichedRecord{RSI: rsi, MA: []model.Value{ma20, ma50}}
	rec.Date = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	rec.Close = close
	return &model.EnrichedSeries{
		Symbol:    "TEST",
		MAWindows: []int{20, 50},
		RSIWindow: 14,
		Records:   []model.EnrichedRecord{rec},
	}
}

func TestEvaluate_Zones(t *testing.T) {
	tests := []struct {
		rsi  model.Value
		zone model.RSIZone
	}{
		{model.Some(20), model.ZoneOversold},
		{model.Some(29.99), model.ZoneOversold},
		{model.Some(30), model.ZoneNeutral},
		{model.Some(50), model.ZoneNeutral},
		{model.Some(70), model.ZoneNeutral},
		{model.Some(70.01), model.ZoneOverbought},
		{model.None, model.ZoneUnknown},
	}
	for _, tt := range tests {
		sig := Evaluate(seriesWithLast(100, tt.rsi, model.None, model.None))
		if sig.Zone != tt.zone {
			t.Errorf("rsi %+v: expected %s, got %s", tt.rsi, tt.zone, sig.Zone)
		}
	}
}

func TestEvaluate_Trend(t *testing.T) {
	tests := []struct {
		name   string
		close  float64
		ma20   model.Value
		ma50   model.Value
		expect model.Trend
	}{
		{"bullish", 110, model.Some(105), model.Some(100), model.TrendBullish},
		{"bearish", 90, model.Some(95), model.Some(100), model.TrendBearish},
		{"mixed", 100, model.Some(105), model.Some(95), model.TrendMixed},
		{"warming up", 100, model.Some(105), model.None, model.TrendUnknown},
	}
	for _, tt := range tests {
		sig := Evaluate(seriesWithLast(tt.close, model.Some(50), tt.ma20, tt.ma50))
		if sig.Trend != tt.expect {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.expect, sig.Trend)
		}
		if sig.Commentary == "" {
			t.Errorf("%s: expected commentary", tt.name)
		}
	}
}

func TestEvaluate_SingleWindowHasNoTrend(t *testing.T) {
	s := seriesWithLast(100, model.Some(50), model.Some(90), model.None)
	s.MAWindows = []int{20}
	s.Records[0].MA = s.Records[0].MA[:1]
	if sig := Evaluate(s); sig.Trend != model.TrendUnknown {
		t.Errorf("expected unknown trend, got %s", sig.Trend)
	}
}

func TestEvaluate_Empty(t *testing.T) {
	sig := Evaluate(&model.EnrichedSeries{})
	if sig.Zone != model.ZoneUnknown || sig.Trend != model.TrendUnknown {
		t.Errorf("expected unknown signal, got %+v", sig)
	}
}
