package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"StockPrep/internal/model"
)

// Column names of the raw price table.
const (
	ColDate     = "Date"
	ColOpen     = "Open"
	ColHigh     = "High"
	ColLow      = "Low"
	ColClose    = "Close"
	ColAdjClose = "Adj Close"
	ColVolume   = "Volume"
)

// RequiredColumns must all be present in a raw price file header.
var RequiredColumns = []string{ColDate, ColOpen, ColHigh, ColLow, ColClose, ColAdjClose, ColVolume}

// dateLayouts are tried in order when parsing the Date column.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05-07:00",
	"2006/01/02",
	"01/02/2006",
	"20060102",
}

var nullTokens = map[string]bool{
	"": true, "nan": true, "na": true, "n/a": true, "null": true, "none": true, "-": true,
}

// Options tune how raw cells are parsed.
type Options struct {
	// LenientNumbers treats unparseable numeric cells as missing instead of
	// failing with a ParseError.
	LenientNumbers bool
}

// CSVSource reads a raw price table from a CSV file.
type CSVSource struct {
	Path    string
	Symbol  string
	Options Options
}

// NewCSVSource creates a source for path; the symbol is the upper-cased file stem.
func NewCSVSource(path string, opts Options) *CSVSource {
	return &CSVSource{Path: path, Symbol: SymbolFromPath(path), Options: opts}
}

func (s *CSVSource) Name() string { return "csv:" + s.Path }

// Load opens the file and parses it.
func (s *CSVSource) Load(_ context.Context) (*model.RawSeries, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()

	raw, err := Parse(f, s.Path, s.Options)
	if err != nil {
		return nil, err
	}
	raw.Symbol = s.Symbol
	return raw, nil
}

// SymbolFromPath derives the ticker from a file name: "data/aapl.csv" -> "AAPL".
func SymbolFromPath(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.TrimSuffix(stem, "_processed")
	return strings.ToUpper(stem)
}

// Parse reads a raw price table. source names the input in errors.
func Parse(r io.Reader, source string, opts Options) (*model.RawSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &model.InvalidInputError{Source: source, Reason: "empty file"}
	}
	if err != nil {
		return nil, fmt.Errorf("read header %s: %w", source, err)
	}
	idx, err := ColumnIndex(header, RequiredColumns, source)
	if err != nil {
		return nil, err
	}

	raw := &model.RawSeries{Source: source}
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
		if isBlank(record) {
			continue
		}
		bar, err := parseRow(record, idx, source, line, opts)
		if err != nil {
			return nil, err
		}
		raw.Bars = append(raw.Bars, bar)
	}

	if len(raw.Bars) == 0 {
		return nil, &model.InvalidInputError{Source: source, Reason: "no data rows"}
	}
	return raw, nil
}

// ColumnIndex maps each wanted column to its position in header,
// matching case-insensitively after trimming.
func ColumnIndex(header, want []string, source string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}
	idx := make(map[string]int, len(want))
	for _, col := range want {
		i, ok := pos[strings.ToLower(col)]
		if !ok {
			return nil, &model.InvalidInputError{Source: source, Reason: fmt.Sprintf("missing required column %q", col)}
		}
		idx[col] = i
	}
	return idx, nil
}

func parseRow(record []string, idx map[string]int, source string, line int, opts Options) (model.RawBar, error) {
	bar := model.RawBar{Line: line}

	dateCell := cell(record, idx[ColDate])
	date, err := ParseDate(dateCell)
	if err != nil {
		return bar, &model.ParseError{Source: source, Line: line, Column: ColDate, Value: dateCell, Err: err}
	}
	bar.Date = date

	floats := []struct {
		col string
		dst **float64
	}{
		{ColOpen, &bar.Open},
		{ColHigh, &bar.High},
		{ColLow, &bar.Low},
		{ColClose, &bar.Close},
		{ColAdjClose, &bar.AdjClose},
	}
	for _, f := range floats {
		v, err := parsePriceCell(cell(record, idx[f.col]))
		if err != nil {
			if !opts.LenientNumbers {
				return bar, &model.ParseError{Source: source, Line: line, Column: f.col, Value: cell(record, idx[f.col]), Err: err}
			}
			log.Printf("[WARN] %s line %d: bad %s %q treated as missing", source, line, f.col, cell(record, idx[f.col]))
			continue
		}
		*f.dst = v
	}

	vol, err := parseVolumeCell(cell(record, idx[ColVolume]))
	if err != nil {
		if !opts.LenientNumbers {
			return bar, &model.ParseError{Source: source, Line: line, Column: ColVolume, Value: cell(record, idx[ColVolume]), Err: err}
		}
		log.Printf("[WARN] %s line %d: bad %s %q treated as missing", source, line, ColVolume, cell(record, idx[ColVolume]))
	} else {
		bar.Volume = vol
	}
	return bar, nil
}

// ParseDate parses a calendar date in any supported layout and returns it
// as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseFloatCell(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if isNull(s) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) {
		return nil, nil
	}
	if math.IsInf(v, 0) {
		return nil, fmt.Errorf("infinite value")
	}
	return &v, nil
}

// parsePriceCell parses a price; prices must be strictly positive.
func parsePriceCell(s string) (*float64, error) {
	v, err := parseFloatCell(s)
	if err != nil || v == nil {
		return v, err
	}
	if *v <= 0 {
		return nil, fmt.Errorf("price %v is not positive", *v)
	}
	return v, nil
}

func parseVolumeCell(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if isNull(s) {
		return nil, nil
	}
	s = strings.ReplaceAll(s, ",", "")
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v < 0 {
			return nil, fmt.Errorf("negative volume")
		}
		return &v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) {
		return nil, nil
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold
	if f < 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return nil, fmt.Errorf("volume %q is not a non-negative integer", s)
	}
	v := int64(f)
	return &v, nil
}

func isNull(s string) bool { return nullTokens[strings.ToLower(s)] }

func cell(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

func isBlank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
