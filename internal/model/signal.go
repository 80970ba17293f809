package model

// RSIZone classifies an RSI reading against the 30/70 reference lines.
type RSIZone string

const (
	ZoneOversold   RSIZone = "OVERSOLD"
	ZoneNeutral    RSIZone = "NEUTRAL"
	ZoneOverbought RSIZone = "OVERBOUGHT"
	ZoneUnknown    RSIZone = "UNKNOWN"
)

// Trend describes the ordering of close and the short/long moving averages.
type Trend string

const (
	TrendBullish Trend = "BULLISH"
	TrendBearish Trend = "BEARISH"
	TrendMixed   Trend = "MIXED"
	TrendUnknown Trend = "UNKNOWN"
)

// Signal is the classification of the latest record of a series.
type Signal struct {
	Zone       RSIZone
	Trend      Trend
	Commentary string
}
