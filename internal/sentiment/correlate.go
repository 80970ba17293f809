package sentiment

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"StockPrep/internal/analysis"
	"StockPrep/internal/model"
)

// Correlation is the Pearson correlation between daily average sentiment and
// daily return. R and P are undefined below the minimum sample size or when
// either side is constant.
type Correlation struct {
	Ticker string
	R      model.Value
	P      model.Value
	N      int
}

// Report holds the per-ticker and pooled correlations.
type Report struct {
	Tickers []Correlation
	Global  Correlation
}

// Correlate computes the correlation per ticker and over all rows. Rows with
// an undefined daily return are left out; minN is the smallest sample that
// gets a coefficient.
func Correlate(rows []Row, minN int) *Report {
	type pair struct{ x, y []float64 }
	per := make(map[string]*pair)
	var all pair
	var tickers []string
	for _, r := range rows {
		p, ok := per[r.Ticker]
		if !ok {
			p = &pair{}
			per[r.Ticker] = p
			tickers = append(tickers, r.Ticker)
		}
		if !r.DailyReturn.Valid {
			continue
		}
		p.x = append(p.x, r.Avg)
		p.y = append(p.y, r.DailyReturn.Float)
		all.x = append(all.x, r.Avg)
		all.y = append(all.y, r.DailyReturn.Float)
	}
	sort.Strings(tickers)

	rep := &Report{Global: correlation("", all.x, all.y, minN)}
	for _, t := range tickers {
		rep.Tickers = append(rep.Tickers, correlation(t, per[t].x, per[t].y, minN))
	}
	return rep
}

func correlation(ticker string, x, y []float64, minN int) Correlation {
	c := Correlation{Ticker: ticker, N: len(x)}
	if len(x) < minN || len(x) < 3 {
		return c
	}
	r, ok := analysis.Pearson(x, y)
	if !ok {
		return c
	}
	c.R = model.Some(r)
	c.P = model.Some(PValue(r, len(x)))
	return c
}

// PValue is the two-sided p-value of a Pearson r over n samples under the
// null of no correlation, from a t distribution with n-2 degrees of freedom.
func PValue(r float64, n int) float64 {
	if n < 3 {
		return math.NaN()
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := math.Abs(r) * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(t)
}
