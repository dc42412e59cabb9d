package pack

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/Mavwarf/favpack/internal/bundle"
	"github.com/Mavwarf/favpack/internal/manifest"
	"github.com/Mavwarf/favpack/internal/tmpl"
)

var epoch = time.Date(2024, 1, 2, 3, 4, 6, 0, time.UTC)

func testBundle() bundle.Bundle {
	b := bundle.Bundle{}
	for i, k := range bundle.Keys() {
		b[k] = bytes.Repeat([]byte{byte(i)}, 10+i)
	}
	return b
}

func TestWriteAndRead(t *testing.T) {
	var buf bytes.Buffer
	m := manifest.New(manifest.Options{Name: "Site", ShortName: "site"})
	if err := Write(&buf, testBundle(), m, epoch); err != nil {
		t.Fatal(err)
	}

	files, err := Read(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"favicon.ico", "favicon-16x16.png", "favicon-32x32.png", "mstile-150x150.png",
		"apple-touch-icon.png", "android-chrome-192x192.png", "android-chrome-512x512.png",
		"site.webmanifest",
	}
	if len(files) != len(want) {
		t.Fatalf("archive has %d files, want %d", len(files), len(want))
	}
	for _, name := range want {
		if _, ok := files[name]; !ok {
			t.Errorf("missing %s", name)
		}
	}
	if !bytes.Equal(files["favicon.ico"], testBundle()[bundle.KeyICO]) {
		t.Error("favicon.ico content mismatch")
	}

	var got manifest.Manifest
	if err := json.Unmarshal(files["site.webmanifest"], &got); err != nil {
		t.Fatal(err)
	}
	if got.ShortName != "site" {
		t.Errorf("manifest short_name = %q", got.ShortName)
	}
}

func TestWriteDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	m := manifest.New(manifest.Options{})
	if err := Write(&a, testBundle(), m, epoch); err != nil {
		t.Fatal(err)
	}
	if err := Write(&b, testBundle(), m, epoch); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("archives differ for identical input")
	}
}

func TestWriteExtraSlot(t *testing.T) {
	b := bundle.Bundle{"png64": []byte{1}}
	var buf bytes.Buffer
	if err := Write(&buf, b, manifest.New(manifest.Options{}), epoch); err != nil {
		t.Fatal(err)
	}
	files, err := Read(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := files["png64.png"]; !ok {
		t.Errorf("extra slot not stored, files = %v", len(files))
	}
}

func TestArchiveName(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	tests := []struct {
		name    string
		pattern string
		vars    tmpl.Vars
		want    string
	}{
		{"default with short name", "", tmpl.Vars{ShortName: "blog"}, "favicon-pack-blog.zip"},
		{"default falls back to timestamp", "", tmpl.Vars{}, "favicon-pack-1700000000123.zip"},
		{"custom pattern", "{name}-icons.zip", tmpl.Vars{Name: "docs"}, "docs-icons.zip"},
		{"unsafe characters", "", tmpl.Vars{ShortName: "a/b:c"}, "favicon-pack-a-b-c.zip"},
		{"empty result", "{name}", tmpl.Vars{}, "favicon-pack.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ArchiveName(tt.pattern, tt.vars, now); got != tt.want {
				t.Errorf("ArchiveName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	if FileName("png180") != "apple-touch-icon.png" {
		t.Errorf("png180 = %q", FileName("png180"))
	}
	if FileName("png64") != "png64.png" {
		t.Errorf("png64 = %q", FileName("png64"))
	}
}
