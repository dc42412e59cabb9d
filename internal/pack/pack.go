// Package pack writes a favicon bundle and its manifest as a ZIP archive.
package pack

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/Mavwarf/favpack/internal/bundle"
	"github.com/Mavwarf/favpack/internal/manifest"
	"github.com/Mavwarf/favpack/internal/tmpl"
)

// DefaultArchiveName is used when no archive_name template is configured.
// An empty short name falls back to the timestamp.
const DefaultArchiveName = "favicon-pack-{short_name}.zip"

// FileNames maps bundle slots to the conventional file names browsers and
// platforms look for.
var FileNames = map[string]string{
	bundle.KeyICO: "favicon.ico",
	"png16":       "favicon-16x16.png",
	"png32":       "favicon-32x32.png",
	"png150":      "mstile-150x150.png",
	"png180":      "apple-touch-icon.png",
	"png192":      "android-chrome-192x192.png",
	"png512":      "android-chrome-512x512.png",
}

// FileName returns the archive file name for a bundle slot. Unknown slots
// keep their slot name with a .png extension.
func FileName(slot string) string {
	if n, ok := FileNames[slot]; ok {
		return n
	}
	return slot + ".png"
}

// Write stores every slot of b plus the manifest in a ZIP stream. Entries
// are written in bundle.Keys order, then any extra slots sorted by name,
// then the manifest. All entries carry modTime so identical input gives
// identical archives.
func Write(w io.Writer, b bundle.Bundle, m manifest.Manifest, modTime time.Time) error {
	zw := zip.NewWriter(w)

	seen := make(map[string]bool, len(b))
	var order []string
	for _, k := range bundle.Keys() {
		if _, ok := b[k]; ok {
			order = append(order, k)
			seen[k] = true
		}
	}
	for _, k := range b.SortedKeys() {
		if !seen[k] {
			order = append(order, k)
		}
	}

	for _, k := range order {
		if err := writeFile(zw, FileName(k), b[k], modTime); err != nil {
			return err
		}
	}

	mb, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := writeFile(zw, manifest.FileName, mb, modTime); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("pack: close: %w", err)
	}
	return nil
}

func writeFile(zw *zip.Writer, name string, data []byte, modTime time.Time) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modTime,
	})
	if err != nil {
		return fmt.Errorf("pack: create %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("pack: write %s: %w", name, err)
	}
	return nil
}

// Read returns the files of a ZIP archive keyed by name.
func Read(r io.ReaderAt, size int64) (map[string][]byte, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("pack: open: %w", err)
	}
	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("pack: open %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("pack: read %s: %w", f.Name, err)
		}
		out[f.Name] = data
	}
	return out, nil
}

// ArchiveName expands pattern (DefaultArchiveName when empty) and strips
// characters that are unsafe in file names. An empty short name is
// replaced by the timestamp.
func ArchiveName(pattern string, v tmpl.Vars, now time.Time) string {
	if pattern == "" {
		pattern = DefaultArchiveName
	}
	if v.Timestamp == "" {
		v.Timestamp = strconv.FormatInt(now.UnixMilli(), 10)
	}
	if v.ShortName == "" {
		v.ShortName = v.Timestamp
	}
	return sanitize(tmpl.Expand(pattern, v))
}

func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "favicon-pack.zip"
	}
	return name
}
