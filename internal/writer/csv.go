package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"

	"StockPrep/internal/loader"
	"StockPrep/internal/model"
)

const dateLayout = "2006-01-02"

// CSVWriter persists enriched series as processed CSV files.
type CSVWriter struct {
	// Precision rounds floats to that many decimal places; negative keeps the
	// shortest representation that parses back to the same float64.
	Precision int32
}

// NewCSVWriter creates a writer with the given float precision.
func NewCSVWriter(precision int) *CSVWriter {
	return &CSVWriter{Precision: int32(precision)}
}

// FileName is the processed file name for a symbol.
func FileName(symbol string) string {
	return fmt.Sprintf("%s_processed.csv", symbol)
}

// WriteFile writes s into dir and returns the file path.
func (w *CSVWriter) WriteFile(dir string, s *model.EnrichedSeries) (string, error) {
	path := filepath.Join(dir, FileName(s.Symbol))
	if err := writeAtomic(path, func(out io.Writer) error { return w.Write(out, s) }); err != nil {
		return "", err
	}
	return path, nil
}

// writeAtomic writes path through a sibling .tmp file renamed into place, so
// readers never see a partial file.
func writeAtomic(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// Header returns the processed table columns for s.
func Header(s *model.EnrichedSeries) []string {
	h := append([]string{}, loader.RequiredColumns...)
	h = append(h, loader.ColDailyReturn)
	for _, w := range s.MAWindows {
		h = append(h, model.MAColumn(w))
	}
	h = append(h, model.RSIColumn(s.RSIWindow))
	if s.VolatilityWindow > 0 {
		h = append(h, model.VolatilityColumn(s.VolatilityWindow))
	}
	if s.MACD.Fast > 0 {
		h = append(h, loader.ColMACD, loader.ColMACDSignal, loader.ColMACDHist)
	}
	return append(h, loader.ColOutlier)
}

// Write serializes s as CSV. Undefined cells are written empty.
func (w *CSVWriter) Write(out io.Writer, s *model.EnrichedSeries) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(Header(s)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range s.Records {
		row := []string{
			r.Date.Format(dateLayout),
			w.float(r.Open),
			w.float(r.High),
			w.float(r.Low),
			w.float(r.Close),
			w.float(r.AdjClose),
			strconv.FormatInt(r.Volume, 10),
			w.value(r.DailyReturn),
		}
		for _, v := range r.MA {
			row = append(row, w.value(v))
		}
		row = append(row, w.value(r.RSI))
		if s.VolatilityWindow > 0 {
			row = append(row, w.value(r.Volatility))
		}
		if s.MACD.Fast > 0 {
			row = append(row, w.value(r.MACD), w.value(r.MACDSignal), w.value(r.MACDHist))
		}
		row = append(row, strconv.FormatBool(r.Outlier))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", r.Date.Format(dateLayout), err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func (w *CSVWriter) float(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	d := decimal.NewFromFloat(f)
	if w.Precision >= 0 {
		d = d.Round(w.Precision)
	}
	return d.String()
}

func (w *CSVWriter) value(v model.Value) string {
	if !v.Valid {
		return ""
	}
	return w.float(v.Float)
}
