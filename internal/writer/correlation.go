package writer

import (
	"encoding/csv"
	"fmt"
	"io"

	"StockPrep/internal/analysis"
)

// WriteCorrelation writes m as a square CSV matrix. Pairs without enough
// overlapping returns are left empty.
func (w *CSVWriter) WriteCorrelation(path string, m *analysis.Matrix) error {
	return writeAtomic(path, func(out io.Writer) error {
		cw := csv.NewWriter(out)
		if err := cw.Write(append([]string{"Symbol"}, m.Symbols...)); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		for i, sym := range m.Symbols {
			row := []string{sym}
			for j := range m.Symbols {
				row = append(row, w.value(m.Values[i][j]))
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write row %s: %w", sym, err)
			}
		}
		cw.Flush()
		return cw.Error()
	})
}
