package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Mavwarf/favpack/internal/paths"
)

// FileStore implements Store using a flat log file.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore that reads and writes the given log file.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// openLog opens (or creates) the log file for appending, creating the
// parent directory if needed.
func (f *FileStore) openLog() (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(f.path), paths.DirPerm); err != nil {
		return nil, err
	}
	return os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, paths.FilePerm)
}

func (f *FileStore) Log(r Record) error {
	file, err := f.openLog()
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = fmt.Fprintf(file, "%s\n\n", formatLine(r))
	return err
}

func (f *FileStore) Entries(days int) ([]Record, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	records := ParseRecords(string(data))
	if days <= 0 {
		return records, nil
	}

	cutoff := DayCutoff(days)
	var filtered []Record
	for _, r := range records {
		if !r.Time.In(cutoff.Location()).Before(cutoff) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// Clean rewrites the log keeping only records from the last days days.
func (f *FileStore) Clean(days int) (int, error) {
	all, err := f.Entries(0)
	if err != nil || len(all) == 0 {
		return 0, err
	}
	kept, err := f.Entries(days)
	if err != nil {
		return 0, err
	}

	var b strings.Builder
	for _, r := range kept {
		b.WriteString(formatLine(r))
		b.WriteString("\n\n")
	}
	if err := paths.AtomicWrite(f.path, []byte(b.String())); err != nil {
		return 0, err
	}
	return len(all) - len(kept), nil
}

func (f *FileStore) Clear() error {
	err := os.Remove(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (f *FileStore) Close() error { return nil }

func (f *FileStore) Path() string {
	return f.path
}
