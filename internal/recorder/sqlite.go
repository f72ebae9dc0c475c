package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the dispatch ledger to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
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
		`CREATE TABLE IF NOT EXISTS dispatch_claims (
			subscriber_id TEXT    NOT NULL,
			slot          TEXT    NOT NULL,
			claimed_at    INTEGER NOT NULL,
			PRIMARY KEY (subscriber_id, slot)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_ts ON dispatch_claims(claimed_at)`,

		`CREATE TABLE IF NOT EXISTS dispatch_log (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			run_id        TEXT,
			subscriber_id TEXT,
			slot          TEXT,
			reports       TEXT,
			status        TEXT,
			error         TEXT,
			bytes         INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_dispatch_ts ON dispatch_log(timestamp)`,

		`CREATE TABLE IF NOT EXISTS refresh_log (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			ok        INTEGER,
			symbols   INTEGER,
			error     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_ts ON refresh_log(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) ClaimDispatch(subscriberID, slot string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`INSERT OR IGNORE INTO dispatch_claims (subscriber_id, slot, claimed_at) VALUES (?,?,?)`,
		subscriberID, slot, time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("claim dispatch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim dispatch: %w", err)
	}
	return n == 1, nil
}

func (r *SQLiteRecorder) RecordDispatch(evt *DispatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO dispatch_log
		(timestamp, run_id, subscriber_id, slot, reports, status, error, bytes)
		VALUES (?,?,?,?,?,?,?,?)`,
		unixOrNow(evt.At), evt.RunID, evt.SubscriberID, evt.Slot,
		strings.Join(evt.Reports, ","), evt.Status, evt.Error, evt.Bytes,
	)
	return err
}

func (r *SQLiteRecorder) RecordRefresh(evt *RefreshEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ok := 0
	if evt.OK {
		ok = 1
	}
	_, err := r.db.Exec(`INSERT INTO refresh_log (timestamp, ok, symbols, error) VALUES (?,?,?,?)`,
		unixOrNow(evt.At), ok, evt.Symbols, evt.Error,
	)
	return err
}

// PruneClaims drops claims older than the cutoff.
func (r *SQLiteRecorder) PruneClaims(olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`DELETE FROM dispatch_claims WHERE claimed_at < ?`, olderThan.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func unixOrNow(t time.Time) int64 {
	if t.IsZero() {
		return time.Now().Unix()
	}
	return t.Unix()
}
