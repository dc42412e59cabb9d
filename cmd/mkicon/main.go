// mkicon renders the favpack app icon as favicon.ico plus a 256×256 PNG.
// Usage: go run ./cmd/mkicon <output-dir>
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mavwarf/favpack/internal/ico"
	"github.com/Mavwarf/favpack/internal/paths"
	"github.com/Mavwarf/favpack/internal/pngenc"
	"github.com/Mavwarf/favpack/internal/source"
)

// appIcon is the text icon favpack uses for itself.
var appIcon = source.TextOptions{
	Text:            "F",
	FontColor:       "#ffffff",
	BackgroundColor: "#209cee",
	FontSize:        90,
	FontWeight:      "700",
	Shape:           source.ShapeRounded,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: mkicon <output-dir>")
		os.Exit(1)
	}
	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "mkicon: %v\n", err)
		os.Exit(1)
	}
}

func run(dir string) error {
	s, err := source.TextIcon(appIcon)
	if err != nil {
		return err
	}
	icoData, err := ico.Encode(s, ico.DefaultSizes)
	if err != nil {
		return err
	}
	pngData, err := pngenc.Encode(s, 256, pngenc.DefaultQuality)
	if err != nil {
		return err
	}
	if err := paths.AtomicWrite(filepath.Join(dir, "favicon.ico"), icoData); err != nil {
		return err
	}
	return paths.AtomicWrite(filepath.Join(dir, "favpack.png"), pngData)
}
