package target

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// JournalSink stores delivered records in an SQLite database. It is the
// target subsystem's own persistence; the bridge never reads it.
type JournalSink struct {
	db *sql.DB
}

// OpenJournal opens or creates the journal database at the given path.
func OpenJournal(path string) (*JournalSink, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	// Single writer connection to avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := migrateJournal(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating journal: %w", err)
	}

	return &JournalSink{db: db}, nil
}

// Emit implements Sink.
func (j *JournalSink) Emit(rec *Record) error {
	meta := make(map[string]string, len(rec.Meta))
	for _, f := range rec.Meta {
		meta[f.Key] = fmt.Sprint(f.Value)
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		metaJSON = []byte("{}")
	}

	_, err = j.db.Exec(`
		INSERT INTO records (id, level, destination, stamp, message, meta_json, stored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Level.String(),
		rec.Dest.Name(),
		rec.Stamp.String(),
		rec.Message,
		string(metaJSON),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

// Close implements Sink.
func (j *JournalSink) Close() error {
	return j.db.Close()
}

// JournalRow is one stored delivery.
type JournalRow struct {
	ID          string
	Level       string
	Destination string
	Stamp       string
	Message     string
	Meta        map[string]string
	StoredAt    time.Time
}

// JournalFilter controls which rows Query returns.
type JournalFilter struct {
	Since time.Time
	Level string
	Limit int
}

// Query returns stored rows matching the filter, newest first.
func (j *JournalSink) Query(f JournalFilter) ([]JournalRow, error) {
	query := `SELECT id, level, destination, stamp, message, meta_json, stored_at
		FROM records WHERE 1=1`
	var args []any

	if !f.Since.IsZero() {
		query += " AND stored_at >= ?"
		args = append(args, f.Since.UTC().Format(time.RFC3339Nano))
	}
	if f.Level != "" {
		query += " AND level = ?"
		args = append(args, f.Level)
	}

	query += " ORDER BY stored_at DESC"

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var out []JournalRow
	for rows.Next() {
		var row JournalRow
		var metaJSON, storedAt string
		if err := rows.Scan(&row.ID, &row.Level, &row.Destination, &row.Stamp,
			&row.Message, &metaJSON, &storedAt); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		row.Meta = make(map[string]string)
		if metaJSON != "" {
			_ = json.Unmarshal([]byte(metaJSON), &row.Meta)
		}
		row.StoredAt, _ = time.Parse(time.RFC3339Nano, storedAt)
		out = append(out, row)
	}
	return out, rows.Err()
}

// Count returns the total number of stored rows.
func (j *JournalSink) Count() (int64, error) {
	var n int64
	err := j.db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&n)
	return n, err
}

// Purge deletes rows older than the given retention duration.
func (j *JournalSink) Purge(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC().Format(time.RFC3339Nano)
	result, err := j.db.Exec(`DELETE FROM records WHERE stored_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging journal: %w", err)
	}
	return result.RowsAffected()
}

func migrateJournal(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS records (
			id          TEXT PRIMARY KEY,
			level       TEXT NOT NULL,
			destination TEXT NOT NULL,
			stamp       TEXT NOT NULL,
			message     TEXT NOT NULL,
			meta_json   TEXT,
			stored_at   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_stored_at ON records(stored_at)`,
		`CREATE INDEX IF NOT EXISTS idx_records_level ON records(level, stored_at)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Debug("journal schema up to date")
	return nil
}
