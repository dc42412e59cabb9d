package history

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Mavwarf/favpack/internal/paths"
)

// File names inside the data directory.
const (
	LogFileName = paths.LogFileName
	DBFileName  = paths.DBFileName
)

// Record describes one generation.
type Record struct {
	Time   time.Time
	Kind   string // "bundle", "ico" or "png"
	Source string // input file name, or "text"
	Name   string // manifest name, may be empty
	Sizes  []int
	Bytes  int64
	SHA256 string // hex digest of the output
}

// NewRecord stamps a record with the current time and the digest of out.
func NewRecord(kind, source, name string, sizes []int, out []byte) Record {
	sum := sha256.Sum256(out)
	return Record{
		Time:   time.Now(),
		Kind:   kind,
		Source: source,
		Name:   name,
		Sizes:  append([]int(nil), sizes...),
		Bytes:  int64(len(out)),
		SHA256: hex.EncodeToString(sum[:]),
	}
}

// SizesCSV joins r.Sizes with commas.
func (r Record) SizesCSV() string {
	parts := make([]string, len(r.Sizes))
	for i, s := range r.Sizes {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ",")
}

// ParseSizes is the inverse of SizesCSV. Malformed items are dropped.
func ParseSizes(csv string) []int {
	if csv == "" {
		return nil
	}
	var sizes []int
	for _, p := range strings.Split(csv, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			sizes = append(sizes, n)
		}
	}
	return sizes
}

// formatLine renders r as one log line:
//
//	2006-01-02T15:04:05Z07:00  kind=bundle  source="logo.png"  name="Site"  sizes=16,32  bytes=123  sha256=ab..
func formatLine(r Record) string {
	return fmt.Sprintf("%s  kind=%s  source=%q  name=%q  sizes=%s  bytes=%d  sha256=%s",
		r.Time.Format(time.RFC3339), r.Kind, r.Source, r.Name, r.SizesCSV(), r.Bytes, r.SHA256)
}

// parseLine is the inverse of formatLine. ok is false for malformed lines.
func parseLine(line string) (r Record, ok bool) {
	ts, rest, found := strings.Cut(line, "  ")
	if !found {
		return Record{}, false
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return Record{}, false
	}
	r.Time = t

	for rest != "" {
		rest = strings.TrimLeft(rest, " ")
		key, after, found := strings.Cut(rest, "=")
		if !found {
			return Record{}, false
		}
		var val string
		if strings.HasPrefix(after, `"`) {
			q, err := strconv.QuotedPrefix(after)
			if err != nil {
				return Record{}, false
			}
			val, _ = strconv.Unquote(q)
			rest = after[len(q):]
		} else {
			val, rest, _ = strings.Cut(after, "  ")
		}

		switch key {
		case "kind":
			r.Kind = val
		case "source":
			r.Source = val
		case "name":
			r.Name = val
		case "sizes":
			r.Sizes = ParseSizes(val)
		case "bytes":
			r.Bytes, _ = strconv.ParseInt(val, 10, 64)
		case "sha256":
			r.SHA256 = val
		}
	}
	if r.Kind == "" {
		return Record{}, false
	}
	return r, true
}

// ParseRecords splits log content on blank lines and parses one record
// per line. Malformed lines are silently skipped.
func ParseRecords(content string) []Record {
	var out []Record
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r, ok := parseLine(line); ok {
			out = append(out, r)
		}
	}
	return out
}
