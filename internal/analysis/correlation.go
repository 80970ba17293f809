package analysis

import (
	"math"
	"sort"
	"time"

	"StockPrep/internal/model"
)

// Matrix is a symmetric correlation matrix of daily returns.
type Matrix struct {
	Symbols []string
	Values  [][]model.Value
	Overlap [][]int // number of common dates used per pair
}

// Get returns the correlation of symbols a and b.
func (m *Matrix) Get(a, b string) (model.Value, bool) {
	i, j := -1, -1
	for k, s := range m.Symbols {
		if s == a {
			i = k
		}
		if s == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return model.None, false
	}
	return m.Values[i][j], true
}

// CorrelationMatrix computes pairwise Pearson correlations of daily returns
// over the dates both symbols have a defined return. Pairs with fewer than
// minOverlap common returns, or with zero variance, stay undefined.
func CorrelationMatrix(minOverlap int, series ...*model.EnrichedSeries) *Matrix {
	returns := make(map[string]map[time.Time]float64, len(series))
	for _, s := range series {
		r := make(map[time.Time]float64, len(s.Records))
		for _, rec := range s.Records {
			if rec.DailyReturn.Valid {
				r[rec.Date] = rec.DailyReturn.Float
			}
		}
		returns[s.Symbol] = r
	}

	symbols := make([]string, 0, len(returns))
	for sym := range returns {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	n := len(symbols)
	m := &Matrix{Symbols: symbols, Values: make([][]model.Value, n), Overlap: make([][]int, n)}
	for i := range symbols {
		m.Values[i] = make([]model.Value, n)
		m.Overlap[i] = make([]int, n)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			x, y := aligned(returns[symbols[i]], returns[symbols[j]])
			m.Overlap[i][j], m.Overlap[j][i] = len(x), len(x)
			if len(x) < minOverlap {
				continue
			}
			if r, ok := Pearson(x, y); ok {
				if i == j {
					r = 1
				}
				m.Values[i][j] = model.Some(r)
				m.Values[j][i] = model.Some(r)
			}
		}
	}
	return m
}

// aligned returns the paired values on dates present in both maps, in date order.
func aligned(a, b map[time.Time]float64) (x, y []float64) {
	dates := make([]time.Time, 0, len(a))
	for d := range a {
		if _, ok := b[d]; ok {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	x = make([]float64, len(dates))
	y = make([]float64, len(dates))
	for k, d := range dates {
		x[k], y[k] = a[d], b[d]
	}
	return x, y
}

// MeanStd computes mean and population standard deviation.
func MeanStd(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	mean := sum / float64(len(data))
	ss := 0.0
	for _, v := range data {
		ss += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(ss / float64(len(data)))
}

// Pearson computes the Pearson correlation coefficient. ok is false when the
// lengths differ, fewer than two points are given, or either side is constant.
func Pearson(x, y []float64) (r float64, ok bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}
	mx, sx := MeanStd(x)
	my, sy := MeanStd(y)
	if sx == 0 || sy == 0 {
		return 0, false
	}
	cov := 0.0
	for i := range x {
		cov += (x[i] - mx) * (y[i] - my)
	}
	cov /= float64(len(x))
	r = cov / (sx * sy)
	if math.IsNaN(r) {
		return 0, false
	}
	// clamp rounding drift
	return math.Max(-1, math.Min(1, r)), true
}
