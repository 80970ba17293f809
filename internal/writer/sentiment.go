package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"StockPrep/internal/model"
	"StockPrep/internal/sentiment"
)

// SentimentCorrelationFile is written next to the merged sentiment table.
const SentimentCorrelationFile = "sentiment_correlations.csv"

var sentimentHeader = []string{
	"Date", "ticker", "Close", "daily_return",
	"avg_sentiment", "min_sentiment", "max_sentiment", "news_count",
}

// WriteSentiment writes the merged price and sentiment rows to path and the
// per-ticker correlations to SentimentCorrelationFile in the same directory.
// It returns the correlation file path.
func (w *CSVWriter) WriteSentiment(path string, rows []sentiment.Row, rep *sentiment.Report) (string, error) {
	err := writeAtomic(path, func(out io.Writer) error {
		cw := csv.NewWriter(out)
		if err := cw.Write(sentimentHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		for _, r := range rows {
			rec := []string{
				r.Date.Format(dateLayout),
				r.Ticker,
				w.float(r.Close),
				w.value(r.DailyReturn),
				w.float(r.Avg),
				w.value(r.Min),
				w.value(r.Max),
				strconv.Itoa(r.Count),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("write row %s %s: %w", r.Ticker, r.Date.Format(dateLayout), err)
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return "", err
	}

	corrPath := filepath.Join(filepath.Dir(path), SentimentCorrelationFile)
	err = writeAtomic(corrPath, func(out io.Writer) error {
		cw := csv.NewWriter(out)
		if err := cw.Write([]string{"ticker", "pearson_r", "p_value", "n"}); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		for _, c := range rep.Tickers {
			if err := cw.Write([]string{c.Ticker, w.value(c.R), w.pvalue(c.P), strconv.Itoa(c.N)}); err != nil {
				return fmt.Errorf("write row %s: %w", c.Ticker, err)
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return "", err
	}
	return corrPath, nil
}

// pvalue keeps small p-values readable instead of rounding them to zero.
func (w *CSVWriter) pvalue(v model.Value) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float, 'g', 6, 64)
}
