package cooldown

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeState(t *testing.T, state map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cooldown.json")
	data, _ := json.Marshal(state)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheck(t *testing.T) {
	now := time.Now()
	recent := now.Add(-10 * time.Second).Format(time.RFC3339)
	old := now.Add(-60 * time.Second).Format(time.RFC3339)

	tests := []struct {
		name    string
		state   map[string]string
		key     string
		seconds int
		want    bool
	}{
		{"not configured", map[string]string{"discord/bundle": recent}, "discord/bundle", 0, false},
		{"within window", map[string]string{"discord/bundle": recent}, "discord/bundle", 30, true},
		{"other kind", map[string]string{"discord/bundle": recent}, "discord/png", 30, false},
		{"expired", map[string]string{"discord/bundle": old}, "discord/bundle", 30, false},
		{"bad timestamp", map[string]string{"discord/bundle": "yesterday"}, "discord/bundle", 30, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeState(t, tt.state)
			if got := check(path, tt.key, tt.seconds, now); got != tt.want {
				t.Errorf("check = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckMissingAndCorrupt(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nonexistent.json")
	if check(missing, "mqtt/ico", 30, time.Now()) {
		t.Error("expected not on cooldown with missing state file")
	}
	corrupt := filepath.Join(t.TempDir(), "cooldown.json")
	os.WriteFile(corrupt, []byte("not json"), 0644)
	if check(corrupt, "mqtt/ico", 30, time.Now()) {
		t.Error("expected not on cooldown with corrupt state file")
	}
}

func TestRecordCreatesDirectoryAndPrunes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "deep", "cooldown.json")
	now := time.Now()
	record(path, "slack/png", now.Add(-48*time.Hour))
	record(path, "slack/bundle", now)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("state file not created: %v", err)
	}
	var state map[string]string
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := state["slack/png"]; ok {
		t.Error("expired entry slack/png not pruned")
	}
	if !check(path, "slack/bundle", 30, now) {
		t.Error("expected slack/bundle on cooldown after record")
	}
}

func TestCheckRecordDataDir(t *testing.T) {
	t.Setenv("APPDATA", t.TempDir())
	if Check("webhook", "ico", 30) {
		t.Fatal("on cooldown before record")
	}
	Record("webhook", "ico")
	if !Check("webhook", "ico", 30) {
		t.Error("not on cooldown after record")
	}
}
