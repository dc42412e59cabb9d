package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Mavwarf/favpack/internal/config"
	"github.com/Mavwarf/favpack/internal/generate"
	"github.com/Mavwarf/favpack/internal/ico"
	"github.com/Mavwarf/favpack/internal/paths"
	"github.com/Mavwarf/favpack/internal/pngenc"
	"github.com/Mavwarf/favpack/internal/raster"
	"github.com/Mavwarf/favpack/internal/server"
	"github.com/Mavwarf/favpack/internal/source"
)

// splitArgs separates positional arguments from --flags. Flags listed in
// valued take the next argument, flags listed in boolean are set to
// "true", and any other flag is an error.
func splitArgs(args []string, valued []string, boolean ...string) ([]string, map[string]string, error) {
	known := make(map[string]bool, len(valued)+len(boolean))
	for _, v := range valued {
		known[v] = true
	}
	for _, b := range boolean {
		known[b] = false
	}
	var pos []string
	flags := map[string]string{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			pos = append(pos, arg)
			continue
		}
		name := strings.TrimPrefix(arg, "--")
		takesValue, ok := known[name]
		if !ok {
			return nil, nil, fmt.Errorf("unknown flag --%s", name)
		}
		if !takesValue {
			flags[name] = "true"
			continue
		}
		if i+1 >= len(args) {
			return nil, nil, fmt.Errorf("--%s requires a value", name)
		}
		flags[name] = args[i+1]
		i++
	}
	return pos, flags, nil
}

// loadImage decodes an image file and fits it into the source canvas.
func (a *app) loadImage(path string) (*raster.Surface, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	s, _, err := source.Load(f, a.cfg.MaxUploadBytes)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return s, filepath.Base(path), nil
}

// generator returns a Generator and a func releasing its store.
func (a *app) generator() (*generate.Generator, func()) {
	store := a.openStore()
	if store == nil {
		return generate.New(a.cfg, nil), func() {}
	}
	return generate.New(a.cfg, store), func() { store.Close() }
}

// manifestFlagNames are the valued flags manifestFlags reads.
var manifestFlagNames = []string{"name", "short-name", "theme-color", "background-color"}

func manifestFlags(flags map[string]string) config.Manifest {
	return config.Manifest{
		Name:            flags["name"],
		ShortName:       flags["short-name"],
		ThemeColor:      flags["theme-color"],
		BackgroundColor: flags["background-color"],
	}
}

func (a *app) generateCmd(args []string) error {
	pos, flags, err := splitArgs(args, manifestFlagNames)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errors.New("usage: favpack generate <image> [--name N] [--short-name S]")
	}
	s, src, err := a.loadImage(pos[0])
	if err != nil {
		return err
	}
	g, done := a.generator()
	defer done()
	out, err := g.Bundle(s, src, manifestFlags(flags))
	if err != nil {
		return err
	}
	return a.writeOutput(out)
}

func (a *app) textCmd(args []string) error {
	pos, flags, err := splitArgs(args,
		append([]string{"color", "bg", "font-size", "shape"}, manifestFlagNames...), "bold", "italic")
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errors.New("usage: favpack text <string> [--color C] [--bg C] [--font-size N] [--shape S]")
	}
	opts := source.TextOptions{
		Text:            pos[0],
		FontColor:       flags["color"],
		BackgroundColor: flags["bg"],
		Shape:           flags["shape"],
	}
	if v, ok := flags["font-size"]; ok {
		size, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("--font-size %q: %w", v, raster.ErrRange)
		}
		opts.FontSize = size
	}
	if flags["bold"] != "" {
		opts.FontWeight = "700"
	}
	if flags["italic"] != "" {
		opts.FontStyle = "italic"
	}
	s, err := source.TextIcon(opts)
	if err != nil {
		return err
	}
	g, done := a.generator()
	defer done()
	out, err := g.Bundle(s, "text", manifestFlags(flags))
	if err != nil {
		return err
	}
	return a.writeOutput(out)
}

func (a *app) icoCmd(args []string) error {
	pos, flags, err := splitArgs(args, []string{"sizes"})
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errors.New("usage: favpack ico <image> [--sizes 16,32,48]")
	}
	sizes, err := server.ParseSizes(flags["sizes"])
	if err != nil {
		return err
	}
	// Validate before decoding so a bad list fails fast.
	if len(sizes) > 0 {
		if err := ico.ValidateSizes(sizes); err != nil {
			return err
		}
	}
	s, src, err := a.loadImage(pos[0])
	if err != nil {
		return err
	}
	g, done := a.generator()
	defer done()
	out, err := g.ICO(s, src, sizes)
	if err != nil {
		return err
	}
	return a.writeOutput(out)
}

func (a *app) pngCmd(args []string) error {
	pos, flags, err := splitArgs(args, []string{"size", "quality"})
	if err != nil {
		return err
	}
	if len(pos) != 1 || flags["size"] == "" {
		return errors.New("usage: favpack png <image> --size N [--quality Q]")
	}
	size, err := strconv.Atoi(flags["size"])
	if err != nil {
		return fmt.Errorf("--size %q: %w", flags["size"], raster.ErrRange)
	}
	quality := pngenc.DefaultQuality
	if v, ok := flags["quality"]; ok {
		if quality, err = strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("--quality %q: %w", v, raster.ErrRange)
		}
	}
	s, src, err := a.loadImage(pos[0])
	if err != nil {
		return err
	}
	g, done := a.generator()
	defer done()
	out, err := g.PNG(s, src, size, quality)
	if err != nil {
		return err
	}
	return a.writeOutput(out)
}

func (a *app) inspectCmd(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: favpack inspect <file.ico>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	f, err := ico.Decode(data)
	if err != nil {
		return err
	}

	kind := "icon"
	if f.Type == 2 {
		kind = "cursor"
	}
	fmt.Fprintf(a.stdout, "%s: %s, %d image(s), %s\n", filepath.Base(args[0]), kind, len(f.Entries), humanize.Bytes(uint64(len(data))))
	for i, e := range f.Entries {
		format := "bmp"
		if e.PNG {
			format = "png"
		}
		fmt.Fprintf(a.stdout, "  #%d  %dx%d  %dbpp  %s  %d bytes @ %d\n",
			i+1, e.Width, e.Height, e.BitCount, format, e.Size, e.Offset)
	}
	return nil
}

func (a *app) serveCmd(args []string) error {
	_, flags, err := splitArgs(args, []string{"port"})
	if err != nil {
		return err
	}
	port := a.cfg.Port
	if v, ok := flags["port"]; ok {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			return fmt.Errorf("--port must be a number between 1 and 65535")
		}
		port = p
	}
	store := a.openStore()
	if store != nil {
		defer store.Close()
	}
	return server.Serve(a.cfg, store, port, version)
}

// writeOutput stores out at the --out destination: a file path, an
// existing directory (the conventional file name is used inside it), "-"
// for stdout, or the current directory when --out is empty. Binary output
// is never written to a terminal.
func (a *app) writeOutput(out generate.Output) error {
	if a.out == "-" {
		if stdoutIsTerminal() {
			return errors.New("refusing to write binary data to a terminal; redirect stdout or use --out <file>")
		}
		_, err := a.stdout.Write(out.Data)
		return err
	}

	path := a.out
	if path == "" {
		path = out.FileName
	} else if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, out.FileName)
	}
	if err := paths.AtomicWrite(path, out.Data); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Wrote %s (%s)\n", path, humanize.Bytes(uint64(len(out.Data))))
	return nil
}
