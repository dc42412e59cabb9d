// Package cooldown rate-limits announcement hooks across processes through
// a small JSON state file in the data directory.
package cooldown

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Mavwarf/favpack/internal/paths"
)

// maxAge bounds how long entries are kept in the state file.
const maxAge = 24 * time.Hour

// Check reports whether the hook type is still within its cooldown window
// for kind. A missing or unreadable state file is treated as "not on
// cooldown" (fail-open).
func Check(hookType, kind string, seconds int) bool {
	return check(statePath(), paths.CooldownKey(hookType, kind), seconds, time.Now())
}

// Record stores the current time for the hook type and kind. Errors are
// printed to stderr but never fatal (best-effort).
func Record(hookType, kind string) {
	record(statePath(), paths.CooldownKey(hookType, kind), time.Now())
}

func check(path, key string, seconds int, now time.Time) bool {
	if seconds <= 0 {
		return false
	}
	state := load(path)
	last, err := time.Parse(time.RFC3339, state[key])
	if err != nil {
		return false
	}
	return now.Sub(last) < time.Duration(seconds)*time.Second
}

func record(path, key string, now time.Time) {
	state := load(path)
	for k, v := range state {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil || now.Sub(t) > maxAge {
			delete(state, k)
		}
	}
	state[key] = now.Format(time.RFC3339)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "cooldown: marshal: %v\n", err)
		return
	}
	if err := paths.AtomicWrite(path, data); err != nil {
		fmt.Fprintf(os.Stderr, "cooldown: write %s: %v\n", path, err)
	}
}

// load returns the stored state, or an empty map when the file is missing
// or corrupt.
func load(path string) map[string]string {
	state := make(map[string]string)
	if data, err := os.ReadFile(path); err == nil {
		if json.Unmarshal(data, &state) != nil {
			return make(map[string]string)
		}
	}
	return state
}

func statePath() string {
	return filepath.Join(paths.DataDir(), paths.CooldownFile)
}
