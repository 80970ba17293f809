// Package preprocess turns a raw price table into a clean, date-sorted
// PriceSeries with daily returns and outlier flags.
package preprocess

import (
	"sort"

	"StockPrep/internal/config"
	"StockPrep/internal/model"
)

// Options controls cleaning. The zero value is not usable; see FromConfig.
type Options struct {
	FillPolicy       config.FillPolicy
	DuplicatePolicy  config.DuplicatePolicy
	OutlierThreshold float64 // <= 0 disables outlier flags
}

// FromConfig extracts the cleaning options from the enrichment config.
func FromConfig(e config.Enrich) Options {
	return Options{
		FillPolicy:       e.FillPolicy,
		DuplicatePolicy:  e.DuplicatePolicy,
		OutlierThreshold: e.OutlierReturnThreshold,
	}
}

// Clean sorts, de-duplicates and fills raw, then derives daily returns and
// outlier flags. The input is not modified.
func Clean(raw *model.RawSeries, opts Options) (*model.PriceSeries, model.CleanStats, error) {
	var stats model.CleanStats
	if raw == nil || len(raw.Bars) == 0 {
		return nil, stats, &model.InvalidInputError{Source: sourceOf(raw), Reason: "empty price table"}
	}
	stats.RowsRead = len(raw.Bars)

	sorted := SortBars(raw.Bars)
	deduped := Dedupe(sorted, opts.DuplicatePolicy)
	stats.Duplicates = len(sorted) - len(deduped)

	var bars []model.Bar
	switch opts.FillPolicy {
	case config.FillDrop:
		bars = dropMissing(deduped)
	default:
		bars = forwardFill(deduped)
	}
	stats.Dropped = len(deduped) - len(bars)
	if len(bars) == 0 {
		return nil, stats, &model.InvalidInputError{Source: sourceOf(raw), Reason: "no complete rows after filling missing values"}
	}

	ApplyReturns(bars, opts.OutlierThreshold)

	for _, b := range bars {
		if b.Filled {
			stats.Filled++
		}
		if b.Outlier {
			stats.Outliers++
		}
	}
	stats.RowsOut = len(bars)

	return &model.PriceSeries{Symbol: raw.Symbol, Bars: bars}, stats, nil
}

// SortBars returns a copy of bars stable-sorted ascending by date.
// Rows sharing a date keep their input order.
func SortBars(bars []model.RawBar) []model.RawBar {
	out := make([]model.RawBar, len(bars))
	copy(out, bars)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Dedupe collapses runs of equal dates in a sorted slice to one record,
// keeping the last-seen row unless policy is KeepFirst.
func Dedupe(sorted []model.RawBar, policy config.DuplicatePolicy) []model.RawBar {
	out := make([]model.RawBar, 0, len(sorted))
	for _, b := range sorted {
		n := len(out)
		if n > 0 && out[n-1].Date.Equal(b.Date) {
			if policy != config.KeepFirst {
				out[n-1] = b
			}
			continue
		}
		out = append(out, b)
	}
	return out
}

// forwardFill copies each missing field from the most recent prior valid
// value of that field. Rows with a field that has no prior value are dropped.
func forwardFill(rows []model.RawBar) []model.Bar {
	var last struct {
		open, high, low, close, adj *float64
		vol                         *int64
	}
	out := make([]model.Bar, 0, len(rows))
	for _, r := range rows {
		filled := false
		pick := func(v *float64, prev **float64) *float64 {
			if v != nil {
				*prev = v
				return v
			}
			filled = true
			return *prev
		}
		open := pick(r.Open, &last.open)
		high := pick(r.High, &last.high)
		low := pick(r.Low, &last.low)
		cl := pick(r.Close, &last.close)
		adj := pick(r.AdjClose, &last.adj)
		vol := r.Volume
		if vol != nil {
			last.vol = vol
		} else {
			filled = true
			vol = last.vol
		}

		if open == nil || high == nil || low == nil || cl == nil || adj == nil || vol == nil {
			continue // leading gap
		}
		out = append(out, model.Bar{
			Date:     r.Date,
			Open:     *open,
			High:     *high,
			Low:      *low,
			Close:    *cl,
			AdjClose: *adj,
			Volume:   *vol,
			Filled:   filled,
		})
	}
	return out
}

func dropMissing(rows []model.RawBar) []model.Bar {
	out := make([]model.Bar, 0, len(rows))
	for _, r := range rows {
		if r.Open == nil || r.High == nil || r.Low == nil || r.Close == nil || r.AdjClose == nil || r.Volume == nil {
			continue
		}
		out = append(out, model.Bar{
			Date:     r.Date,
			Open:     *r.Open,
			High:     *r.High,
			Low:      *r.Low,
			Close:    *r.Close,
			AdjClose: *r.AdjClose,
			Volume:   *r.Volume,
		})
	}
	return out
}

// ApplyReturns sets DailyReturn and Outlier on bars in place. The first bar's
// return is undefined, as is any return whose previous close is zero.
func ApplyReturns(bars []model.Bar, threshold float64) {
	for i := range bars {
		bars[i].DailyReturn = model.None
		bars[i].Outlier = false
		if i == 0 {
			continue
		}
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		r := (bars[i].Close - prev) / prev
		bars[i].DailyReturn = model.Some(r)
		if threshold > 0 && (r > threshold || r < -threshold) {
			bars[i].Outlier = true
		}
	}
}

func sourceOf(raw *model.RawSeries) string {
	if raw == nil {
		return ""
	}
	if raw.Source != "" {
		return raw.Source
	}
	return raw.Symbol
}
