package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Mavwarf/favpack/internal/ico"
)

func TestRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	if err := run(dir); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "favicon.ico"))
	if err != nil {
		t.Fatal(err)
	}
	f, err := ico.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Entries) != len(ico.DefaultSizes) {
		t.Errorf("entries = %d, want %d", len(f.Entries), len(ico.DefaultSizes))
	}
	if _, err := os.Stat(filepath.Join(dir, "favpack.png")); err != nil {
		t.Error(err)
	}
}
