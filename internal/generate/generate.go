// Package generate runs the codec for one request and records the result:
// it builds the output file, appends it to the activity log and fires the
// configured announcement hooks.
package generate

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/Mavwarf/favpack/internal/bundle"
	"github.com/Mavwarf/favpack/internal/config"
	"github.com/Mavwarf/favpack/internal/history"
	"github.com/Mavwarf/favpack/internal/ico"
	"github.com/Mavwarf/favpack/internal/manifest"
	"github.com/Mavwarf/favpack/internal/pack"
	"github.com/Mavwarf/favpack/internal/pngenc"
	"github.com/Mavwarf/favpack/internal/raster"
	"github.com/Mavwarf/favpack/internal/runner"
	"github.com/Mavwarf/favpack/internal/tmpl"
)

// Output kinds.
const (
	KindBundle = "bundle"
	KindICO    = "ico"
	KindPNG    = "png"
)

// Output is a finished file ready to be written or served.
type Output struct {
	Kind        string
	FileName    string
	ContentType string
	Data        []byte
}

// Generator produces outputs for one configuration.
type Generator struct {
	Config config.Config
	Store  history.Store // nil disables the activity log
	Async  bool          // run hooks in the background; see Wait
	Now    func() time.Time

	announce func([]config.Hook, config.Credentials, runner.Event)
	wg       sync.WaitGroup
}

// New returns a Generator. store may be nil.
func New(cfg config.Config, store history.Store) *Generator {
	return &Generator{Config: cfg, Store: store, Now: time.Now, announce: runner.Announce}
}

// Wait blocks until background hooks started by an Async generator finish.
func (g *Generator) Wait() {
	g.wg.Wait()
}

// Bundle builds the full favicon pack for s as a ZIP archive. Empty
// fields of m fall back to the configured manifest.
func (g *Generator) Bundle(s *raster.Surface, source string, m config.Manifest) (Output, error) {
	m = mergeManifest(g.Config.Manifest, m)
	now := g.now()

	b, err := bundle.Generate(s)
	if err != nil {
		return Output{}, err
	}
	man := manifest.New(manifest.Options{
		Name:            m.Name,
		ShortName:       m.ShortName,
		ThemeColor:      m.ThemeColor,
		BackgroundColor: m.BackgroundColor,
		Display:         m.Display,
	})

	var buf bytes.Buffer
	if err := pack.Write(&buf, b, man, now); err != nil {
		return Output{}, err
	}

	name := pack.ArchiveName(g.Config.ArchiveName, tmpl.Vars{
		Name:      m.Name,
		ShortName: m.ShortName,
		Timestamp: strconv.FormatInt(now.UnixMilli(), 10),
		Kind:      KindBundle,
		Source:    source,
	}, now)

	out := Output{Kind: KindBundle, FileName: name, ContentType: "application/zip", Data: buf.Bytes()}
	g.record(out, source, m, bundle.PNGSizes, b[bundle.PNGKey(180)], now)
	return out, nil
}

// ICO encodes s as a multi-image ICO. Empty sizes use the configured
// ico_sizes, then ico.DefaultSizes.
func (g *Generator) ICO(s *raster.Surface, source string, sizes []int) (Output, error) {
	if len(sizes) == 0 {
		sizes = g.Config.IcoSizes
	}
	if len(sizes) == 0 {
		sizes = ico.DefaultSizes
	}
	data, err := ico.Encode(s, sizes)
	if err != nil {
		return Output{}, err
	}
	out := Output{Kind: KindICO, FileName: pack.FileName(bundle.KeyICO), ContentType: "image/x-icon", Data: data}
	g.record(out, source, g.Config.Manifest, sizes, nil, g.now())
	return out, nil
}

// PNG encodes s as a size x size PNG.
func (g *Generator) PNG(s *raster.Surface, source string, size int, quality float64) (Output, error) {
	data, err := pngenc.Encode(s, size, quality)
	if err != nil {
		return Output{}, err
	}
	name, ok := pack.FileNames[bundle.PNGKey(size)]
	if !ok {
		name = fmt.Sprintf("favicon-%dx%d.png", size, size)
	}
	out := Output{Kind: KindPNG, FileName: name, ContentType: "image/png", Data: data}
	g.record(out, source, g.Config.Manifest, []int{size}, data, g.now())
	return out, nil
}

func (g *Generator) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

// record appends out to the activity log and runs the hooks. Both are
// best-effort.
func (g *Generator) record(out Output, source string, m config.Manifest, sizes []int, preview []byte, now time.Time) {
	rec := history.NewRecord(out.Kind, source, m.Name, sizes, out.Data)
	rec.Time = now
	if g.Store != nil && g.Config.Log {
		if err := g.Store.Log(rec); err != nil {
			fmt.Fprintf(os.Stderr, "history: %v\n", err)
		}
	}

	hooks := runner.FilterHooks(g.Config.Hooks, out.Kind)
	if len(hooks) == 0 {
		return
	}
	ev := runner.Event{
		Time:      now,
		Kind:      out.Kind,
		Name:      m.Name,
		ShortName: m.ShortName,
		Source:    source,
		Bytes:     rec.Bytes,
		SHA256:    rec.SHA256,
		Sizes:     rec.Sizes,
		Preview:   preview,
	}
	announce := g.announce
	if announce == nil {
		announce = runner.Announce
	}
	if !g.Async {
		announce(hooks, g.Config.Credentials, ev)
		return
	}
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		announce(hooks, g.Config.Credentials, ev)
	}()
}

func mergeManifest(base, over config.Manifest) config.Manifest {
	if over.Name != "" {
		base.Name = over.Name
	}
	if over.ShortName != "" {
		base.ShortName = over.ShortName
	}
	if over.ThemeColor != "" {
		base.ThemeColor = over.ThemeColor
	}
	if over.BackgroundColor != "" {
		base.BackgroundColor = over.BackgroundColor
	}
	if over.Display != "" {
		base.Display = over.Display
	}
	return base
}
