package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"StockPulse/internal/model"
)

// SQLiteRecorder persists scan history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	// WAL mode so dashboards can read while scans write.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			id            TEXT PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			timeframe     TEXT,
			range_spec    TEXT,
			interval_spec TEXT,
			tolerance     REAL,
			top_n         INTEGER,
			symbols       INTEGER,
			upward_count  INTEGER,
			skipped       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_runs_ts ON scan_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS scan_hits (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_id        TEXT NOT NULL REFERENCES scan_runs(id),
			symbol         TEXT NOT NULL,
			price          REAL,
			previous_close REAL,
			change_percent REAL,
			high_52w       REAL,
			low_52w        REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_hits_symbol ON scan_hits(symbol)`,

		`CREATE TABLE IF NOT EXISTS scan_skips (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_id TEXT NOT NULL REFERENCES scan_runs(id),
			symbol  TEXT NOT NULL,
			kind    TEXT,
			message TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordScan(snap *model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO scan_runs
		(id, timestamp, timeframe, range_spec, interval_spec, tolerance, top_n, symbols, upward_count, skipped)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		snap.ID, snap.GeneratedAt.Unix(), snap.Timeframe.Label, snap.Timeframe.Range, snap.Timeframe.Interval,
		snap.Tolerance, snap.TopN, len(snap.Symbols), len(snap.Upward), len(snap.Skipped),
	); err != nil {
		return fmt.Errorf("insert scan run: %w", err)
	}

	for _, u := range snap.Upward {
		if _, err := tx.Exec(`INSERT INTO scan_hits
			(scan_id, symbol, price, previous_close, change_percent, high_52w, low_52w)
			VALUES (?,?,?,?,?,?,?)`,
			snap.ID, u.Symbol, u.Price, u.PreviousClose, u.ChangePercent, u.High52w, u.Low52w,
		); err != nil {
			return fmt.Errorf("insert scan hit %s: %w", u.Symbol, err)
		}
	}

	for _, s := range snap.Skipped {
		msg := ""
		if s.Err != nil {
			msg = s.Err.Error()
		}
		if _, err := tx.Exec(`INSERT INTO scan_skips (scan_id, symbol, kind, message) VALUES (?,?,?,?)`,
			snap.ID, s.Symbol, string(s.Kind), msg,
		); err != nil {
			return fmt.Errorf("insert scan skip %s: %w", s.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecentScans(limit int) ([]ScanSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`SELECT id, timestamp, timeframe, tolerance, symbols, upward_count, skipped
		FROM scan_runs ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScanSummary
	for rows.Next() {
		var s ScanSummary
		if err := rows.Scan(&s.ID, &s.Timestamp, &s.Timeframe, &s.Tolerance, &s.Symbols, &s.UpwardCount, &s.Skipped); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// HitCount returns how many scans flagged symbol as upward.
func (r *SQLiteRecorder) HitCount(symbol string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM scan_hits WHERE symbol = ?`, symbol).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
