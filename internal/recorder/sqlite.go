package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"StockPrep/internal/model"
)

// SQLiteRecorder persists the run journal to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id           TEXT NOT NULL,
			timestamp        INTEGER NOT NULL,
			symbol           TEXT NOT NULL,
			status           TEXT NOT NULL,
			input_path       TEXT,
			output_path      TEXT,
			rows_read        INTEGER,
			rows_out         INTEGER,
			duplicates       INTEGER,
			filled           INTEGER,
			dropped          INTEGER,
			outliers         INTEGER,
			missing_sessions INTEGER,
			first_date       TEXT,
			last_date        TEXT,
			latest_close     REAL,
			latest_rsi       REAL,
			rsi_zone         TEXT,
			trend            TEXT,
			duration_ms      INTEGER,
			error            TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol ON runs(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun inserts one run. An undefined latest RSI is stored as NULL.
func (r *SQLiteRecorder) RecordRun(run *model.RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rsi sql.NullFloat64
	if run.LatestRSI.Valid {
		rsi = sql.NullFloat64{Float64: run.LatestRSI.Float, Valid: true}
	}
	var errText sql.NullString
	if run.Err != nil {
		errText = sql.NullString{String: run.Err.Error(), Valid: true}
	}
	ts := run.StartedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	st := run.Stats
	_, err := r.db.Exec(`INSERT INTO runs
		(run_id, timestamp, symbol, status, input_path, output_path,
		 rows_read, rows_out, duplicates, filled, dropped, outliers, missing_sessions,
		 first_date, last_date, latest_close, latest_rsi, rsi_zone, trend,
		 duration_ms, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.RunID, ts.Unix(), run.Symbol, string(run.Status), run.InputPath, run.OutputPath,
		st.RowsRead, st.RowsOut, st.Duplicates, st.Filled, st.Dropped, st.Outliers, run.MissingSessions,
		formatDate(run.FirstDate), formatDate(run.LastDate), run.LatestClose, rsi,
		string(run.Signal.Zone), string(run.Signal.Trend),
		run.Duration.Milliseconds(), errText,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.Symbol, err)
	}
	return nil
}

// CountRuns returns how many runs were journaled for symbol.
func (r *SQLiteRecorder) CountRuns(symbol string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE symbol = ?`, symbol).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
