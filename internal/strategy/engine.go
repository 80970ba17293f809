package strategy

import (
	"fmt"

	"StockPrep/internal/model"
)

// RSI reference lines.
const (
	OversoldLevel   = 30.0
	OverboughtLevel = 70.0
)

// Evaluate classifies the latest record of s by RSI zone and moving-average
// trend. The shortest and longest configured windows define the trend.
func Evaluate(s *model.EnrichedSeries) model.Signal {
	last := s.Last()
	if last == nil {
		return model.Signal{Zone: model.ZoneUnknown, Trend: model.TrendUnknown, Commentary: "no data"}
	}
	zone := classifyRSI(last.RSI)

	trend := model.TrendUnknown
	short, long := trendWindows(s.MAWindows)
	if short > 0 && long > 0 {
		ms, _ := s.MAValue(short, len(s.Records)-1)
		ml, _ := s.MAValue(long, len(s.Records)-1)
		trend = classifyTrend(last.Close, ms, ml)
	}

	return model.Signal{
		Zone:       zone,
		Trend:      trend,
		Commentary: commentary(s, last, zone, trend, short, long),
	}
}

func classifyRSI(rsi model.Value) model.RSIZone {
	if !rsi.Valid {
		return model.ZoneUnknown
	}
	switch {
	case rsi.Float < OversoldLevel:
		return model.ZoneOversold
	case rsi.Float > OverboughtLevel:
		return model.ZoneOverbought
	default:
		return model.ZoneNeutral
	}
}

func classifyTrend(close float64, short, long model.Value) model.Trend {
	if !short.Valid || !long.Valid {
		return model.TrendUnknown
	}
	switch {
	case close > short.Float && short.Float > long.Float:
		return model.TrendBullish
	case close < short.Float && short.Float < long.Float:
		return model.TrendBearish
	default:
		return model.TrendMixed
	}
}

// trendWindows returns the shortest and longest distinct windows, or zeros
// when fewer than two are configured.
func trendWindows(windows []int) (short, long int) {
	for _, w := range windows {
		if short == 0 || w < short {
			short = w
		}
		if w > long {
			long = w
		}
	}
	if short == long {
		return 0, 0
	}
	return short, long
}

func commentary(s *model.EnrichedSeries, last *model.EnrichedRecord, zone model.RSIZone, trend model.Trend, short, long int) string {
	rsi := "n/a"
	if last.RSI.Valid {
		rsi = fmt.Sprintf("%.1f", last.RSI.Float)
	}
	text := fmt.Sprintf("%s %s=%s (%s)", last.Date.Format("2006-01-02"), model.RSIColumn(s.RSIWindow), rsi, zone)
	if short > 0 {
		text += fmt.Sprintf(", close vs %s/%s: %s", model.MAColumn(short), model.MAColumn(long), trend)
	}
	return text
}
