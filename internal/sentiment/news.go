package sentiment

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"StockPrep/internal/loader"
	"StockPrep/internal/model"
)

// News table columns.
const (
	ColDate     = "date"
	ColStock    = "stock"
	ColHeadline = "headline"
)

// Headline is one scored news row.
type Headline struct {
	Ticker   string
	Date     time.Time // calendar day the headline was published
	Text     string
	Polarity float64
}

// LoadNews reads and scores a news CSV.
func LoadNews(path string) ([]Headline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ParseNews(f, path)
}

// ParseNews reads date, stock and headline columns from r. Rows with an
// unparseable date, no ticker or an empty headline are dropped with a warning.
func ParseNews(r io.Reader, source string) ([]Headline, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &model.InvalidInputError{Source: source, Reason: "empty file"}
	}
	if err != nil {
		return nil, fmt.Errorf("read header %s: %w", source, err)
	}
	idx, err := loader.ColumnIndex(header, []string{ColDate, ColStock, ColHeadline}, source)
	if err != nil {
		return nil, err
	}

	var out []Headline
	dropped := 0
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
		h, ok := parseHeadline(record, idx)
		if !ok {
			dropped++
			continue
		}
		out = append(out, h)
	}
	if dropped > 0 {
		log.Printf("[WARN] %s: dropped %d unusable news rows", source, dropped)
	}
	return out, nil
}

func parseHeadline(record []string, idx map[string]int) (Headline, bool) {
	get := func(col string) string {
		if i := idx[col]; i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	date, err := loader.ParseDate(get(ColDate))
	if err != nil {
		return Headline{}, false
	}
	ticker := strings.ToUpper(get(ColStock))
	text := get(ColHeadline)
	if ticker == "" || text == "" {
		return Headline{}, false
	}
	return Headline{Ticker: ticker, Date: date, Text: text, Polarity: Polarity(text)}, true
}
