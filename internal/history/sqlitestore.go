package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Mavwarf/favpack/internal/paths"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) a SQLite database at path, creates
// the schema, and performs one-time migration from favpack.log if it
// exists in the same directory.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), paths.DirPerm); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS generations (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp  TEXT    NOT NULL,
    kind       TEXT    NOT NULL,
    source     TEXT    NOT NULL DEFAULT '',
    name       TEXT    NOT NULL DEFAULT '',
    sizes_csv  TEXT    NOT NULL DEFAULT '',
    bytes      INTEGER NOT NULL DEFAULT 0,
    sha256     TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_generations_timestamp ON generations(timestamp DESC);
`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}

	// One-time migration from flat file.
	logPath := filepath.Join(filepath.Dir(path), LogFileName)
	if _, err := os.Stat(logPath); err == nil {
		if err := s.migrateFromFile(logPath); err != nil {
			fmt.Fprintf(os.Stderr, "history: migration: %v\n", err)
		}
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Log(r Record) error {
	return insert(s.db, r)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insert(db execer, r Record) error {
	_, err := db.Exec(
		`INSERT INTO generations (timestamp, kind, source, name, sizes_csv, bytes, sha256)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Time.Format(time.RFC3339), r.Kind, r.Source, r.Name, r.SizesCSV(), r.Bytes, r.SHA256,
	)
	return err
}

func (s *SQLiteStore) Entries(days int) ([]Record, error) {
	query := `SELECT timestamp, kind, source, name, sizes_csv, bytes, sha256 FROM generations`
	var args []any
	if days > 0 {
		query += ` WHERE timestamp >= ?`
		args = append(args, DayCutoff(days).Format(time.RFC3339))
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var ts, sizes string
		var r Record
		if err := rows.Scan(&ts, &r.Kind, &r.Source, &r.Name, &sizes, &r.Bytes, &r.SHA256); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			continue
		}
		r.Time = t
		r.Sizes = ParseSizes(sizes)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Clean(days int) (int, error) {
	cutoff := DayCutoff(days).Format(time.RFC3339)
	res, err := s.db.Exec(`DELETE FROM generations WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM generations`)
	return err
}

func (s *SQLiteStore) Path() string {
	return s.path
}

// migrateFromFile imports an existing favpack.log into the database. On
// success the log is renamed to favpack.log.migrated.
func (s *SQLiteStore) migrateFromFile(logPath string) error {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range ParseRecords(string(data)) {
		if err := insert(tx, r); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return os.Rename(logPath, logPath+".migrated")
}
