package slack

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendPlain(t *testing.T) {
	var got map[string]any
	var gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := Send(srv.URL, "hello world"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if got["text"] != "hello world" {
		t.Errorf("text = %v, want %q", got["text"], "hello world")
	}
	if _, ok := got["blocks"]; ok {
		t.Error("plain message should not carry blocks")
	}
}

func TestSendFields(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	err := Send(srv.URL, "New favicon pack", Field{"Kind", "bundle"}, Field{"Size", "15 kB"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(got.Blocks) != 2 || got.Blocks[0].Text.Text != "New favicon pack" {
		t.Fatalf("blocks = %+v", got.Blocks)
	}
	grid := got.Blocks[1].Fields
	if len(grid) != 2 || grid[1].Text != "*Size*\n15 kB" || grid[1].Type != "mrkdwn" {
		t.Errorf("fields = %+v", grid)
	}
}

func TestSendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("invalid_payload"))
	}))
	defer srv.Close()

	err := Send(srv.URL, "test")
	if err == nil || !strings.Contains(err.Error(), "invalid_payload") {
		t.Fatalf("err = %v, want status error with body", err)
	}
}
