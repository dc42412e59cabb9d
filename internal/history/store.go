// Package history keeps an activity log of generated favicon packs.
package history

import (
	"fmt"
	"path/filepath"
)

// Store abstracts activity log storage: a flat log file (FileStore) or a
// SQLite database (SQLiteStore).
type Store interface {
	// Write - returns error for correctness; callers treat logging as best-effort.
	Log(r Record) error

	// Read
	Entries(days int) ([]Record, error) // parsed records, 0 = all

	// Maintenance
	Clean(days int) (int, error) // remove records older than days, return removed count
	Clear() error                // delete all data
	Close() error

	// Metadata
	Path() string
}

// Open returns the store selected by storage ("file" or "sqlite") inside dir.
func Open(storage, dir string) (Store, error) {
	switch storage {
	case "", "file":
		return NewFileStore(filepath.Join(dir, LogFileName)), nil
	case "sqlite":
		return NewSQLiteStore(filepath.Join(dir, DBFileName))
	default:
		return nil, fmt.Errorf("history: unknown storage %q", storage)
	}
}
