package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"StockPrep/internal/model"
)

// Derived column names of the processed table.
const (
	ColDailyReturn = "DailyReturn"
	ColMACD        = "MACD"
	ColMACDSignal  = "MACD_signal"
	ColMACDHist    = "MACD_hist"
	ColOutlier     = "Outlier"
)

// LoadEnriched reads a processed CSV written by the writer package back into
// an EnrichedSeries. Empty indicator cells come back undefined.
func LoadEnriched(path string) (*model.EnrichedSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := ParseEnriched(f, path)
	if err != nil {
		return nil, err
	}
	s.Symbol = SymbolFromPath(path)
	return s, nil
}

// ParseEnriched reads a processed table from r.
func ParseEnriched(r io.Reader, source string) (*model.EnrichedSeries, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &model.InvalidInputError{Source: source, Reason: "empty file"}
	}
	if err != nil {
		return nil, fmt.Errorf("read header %s: %w", source, err)
	}
	idx, err := ColumnIndex(header, append(append([]string{}, RequiredColumns...), ColDailyReturn), source)
	if err != nil {
		return nil, err
	}

	s := &model.EnrichedSeries{}
	maCols := map[int]int{}
	rsiCol, volCol := -1, -1
	optional := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(h)
		switch {
		case h == ColMACD || h == ColMACDSignal || h == ColMACDHist || h == ColOutlier:
			optional[h] = i
		case strings.HasPrefix(h, "Volatility"):
			if w, err := strconv.Atoi(strings.TrimPrefix(h, "Volatility")); err == nil {
				s.VolatilityWindow, volCol = w, i
			}
		case strings.HasPrefix(h, "RSI"):
			if w, err := strconv.Atoi(strings.TrimPrefix(h, "RSI")); err == nil {
				s.RSIWindow, rsiCol = w, i
			}
		case strings.HasPrefix(h, "MA"):
			if w, err := strconv.Atoi(strings.TrimPrefix(h, "MA")); err == nil {
				maCols[w] = i
				s.MAWindows = append(s.MAWindows, w)
			}
		}
	}
	sort.Ints(s.MAWindows)

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read %s line %d: %w", source, line, err)
		}
		raw, err := parseRow(record, idx, source, line, Options{})
		if err != nil {
			return nil, err
		}
		if raw.Open == nil || raw.High == nil || raw.Low == nil || raw.Close == nil || raw.AdjClose == nil || raw.Volume == nil {
			return nil, &model.InvalidInputError{Source: source, Reason: fmt.Sprintf("line %d: processed row has missing price fields", line)}
		}
		rec := model.EnrichedRecord{Bar: model.Bar{
			Date: raw.Date, Open: *raw.Open, High: *raw.High, Low: *raw.Low,
			Close: *raw.Close, AdjClose: *raw.AdjClose, Volume: *raw.Volume,
		}}

		get := func(col string, i int) (model.Value, error) {
			if i < 0 {
				return model.None, nil
			}
			v, err := parseFloatCell(cell(record, i))
			if err != nil {
				return model.None, &model.ParseError{Source: source, Line: line, Column: col, Value: cell(record, i), Err: err}
			}
			if v == nil {
				return model.None, nil
			}
			return model.Some(*v), nil
		}

		if rec.DailyReturn, err = get(ColDailyReturn, idx[ColDailyReturn]); err != nil {
			return nil, err
		}
		rec.MA = make([]model.Value, len(s.MAWindows))
		for k, w := range s.MAWindows {
			if rec.MA[k], err = get(model.MAColumn(w), maCols[w]); err != nil {
				return nil, err
			}
		}
		if rec.RSI, err = get(model.RSIColumn(s.RSIWindow), rsiCol); err != nil {
			return nil, err
		}
		if rec.Volatility, err = get(model.VolatilityColumn(s.VolatilityWindow), volCol); err != nil {
			return nil, err
		}
		for col, dst := range map[string]*model.Value{ColMACD: &rec.MACD, ColMACDSignal: &rec.MACDSignal, ColMACDHist: &rec.MACDHist} {
			i, ok := optional[col]
			if !ok {
				continue
			}
			if *dst, err = get(col, i); err != nil {
				return nil, err
			}
		}
		if i, ok := optional[ColOutlier]; ok {
			rec.Outlier, _ = strconv.ParseBool(strings.TrimSpace(cell(record, i)))
		}
		s.Records = append(s.Records, rec)
	}
	if len(s.Records) == 0 {
		return nil, &model.InvalidInputError{Source: source, Reason: "no data rows"}
	}
	return s, nil
}
