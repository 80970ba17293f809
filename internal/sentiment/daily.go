package sentiment

import (
	"sort"
	"time"

	"StockPrep/internal/model"
)

// Daily aggregates the headlines of one ticker on one day.
type Daily struct {
	Ticker string
	Date   time.Time
	Avg    float64
	Min    float64
	Max    float64
	Count  int
}

type dayKey struct {
	ticker string
	date   time.Time
}

// Aggregate groups headlines by ticker and day, sorted by ticker then date.
func Aggregate(headlines []Headline) []Daily {
	groups := make(map[dayKey]*Daily)
	for _, h := range headlines {
		k := dayKey{h.Ticker, h.Date}
		d, ok := groups[k]
		if !ok {
			d = &Daily{Ticker: h.Ticker, Date: h.Date, Min: h.Polarity, Max: h.Polarity}
			groups[k] = d
		}
		d.Avg += h.Polarity // running sum until the final pass
		d.Min = min(d.Min, h.Polarity)
		d.Max = max(d.Max, h.Polarity)
		d.Count++
	}

	out := make([]Daily, 0, len(groups))
	for _, d := range groups {
		d.Avg /= float64(d.Count)
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ticker != out[j].Ticker {
			return out[i].Ticker < out[j].Ticker
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Row is one price day joined with that day's sentiment.
type Row struct {
	Ticker      string
	Date        time.Time
	Close       float64
	DailyReturn model.Value
	Avg         float64 // 0 on days without news
	Min         model.Value
	Max         model.Value
	Count       int
}

// Merge left-joins daily sentiment onto every processed price day. Days
// without news get a zero average and count, and undefined min and max.
func Merge(series []*model.EnrichedSeries, daily []Daily) []Row {
	byKey := make(map[dayKey]Daily, len(daily))
	for _, d := range daily {
		byKey[dayKey{d.Ticker, d.Date}] = d
	}

	sorted := append([]*model.EnrichedSeries(nil), series...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Symbol < sorted[j].Symbol })

	var rows []Row
	for _, s := range sorted {
		for _, rec := range s.Records {
			row := Row{Ticker: s.Symbol, Date: rec.Date, Close: rec.Close, DailyReturn: rec.DailyReturn}
			if d, ok := byKey[dayKey{s.Symbol, rec.Date}]; ok {
				row.Avg = d.Avg
				row.Min = model.Some(d.Min)
				row.Max = model.Some(d.Max)
				row.Count = d.Count
			}
			rows = append(rows, row)
		}
	}
	return rows
}
