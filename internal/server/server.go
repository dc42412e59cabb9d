// Package server exposes the favicon codec over a local HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/Mavwarf/favpack/internal/config"
	"github.com/Mavwarf/favpack/internal/generate"
	"github.com/Mavwarf/favpack/internal/history"
	"github.com/Mavwarf/favpack/internal/pngenc"
	"github.com/Mavwarf/favpack/internal/raster"
	"github.com/Mavwarf/favpack/internal/source"
)

// formOverhead is added to the upload limit for multipart framing and
// text fields.
const formOverhead = 64 << 10

// Endpoints lists the routes reported by the status endpoint.
var Endpoints = []string{
	"GET /",
	"POST /api/bundle",
	"POST /api/ico",
	"POST /api/png",
	"GET /api/history",
}

type server struct {
	cfg     config.Config
	gen     *generate.Generator
	store   history.Store
	version string
}

// NewHandler returns the API handler. store may be nil.
func NewHandler(cfg config.Config, gen *generate.Generator, store history.Store, version string) http.Handler {
	s := &server{cfg: cfg, gen: gen, store: store, version: version}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleStatus)
	mux.HandleFunc("/api/bundle", s.handleBundle)
	mux.HandleFunc("/api/ico", s.handleICO)
	mux.HandleFunc("/api/png", s.handlePNG)
	mux.HandleFunc("/api/history", s.handleHistory)
	return mux
}

// Serve listens on 127.0.0.1:port until interrupted, then shuts down
// gracefully and waits for background hooks.
func Serve(cfg config.Config, store history.Store, port int, version string) error {
	gen := generate.New(cfg, store)
	gen.Async = true
	defer gen.Wait()

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(cfg, gen, store, version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
	}()

	fmt.Printf("favpack API: http://%s\n", addr)
	fmt.Println("Press Ctrl+C to stop")

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{
		"name":      "favpack",
		"version":   s.version,
		"endpoints": Endpoints,
	})
}

func (s *server) handleBundle(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}

	var (
		surf *raster.Surface
		src  string
		err  error
	)
	if file, hdr, ferr := r.FormFile("image"); ferr == nil {
		defer file.Close()
		surf, _, err = source.Load(file, s.cfg.MaxUploadBytes)
		src = hdr.Filename
	} else if text := r.FormValue("text"); text != "" {
		surf, err = textIcon(r)
		src = "text"
	} else {
		http.Error(w, "an image file or a text field is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := s.gen.Bundle(surf, src, config.Manifest{
		Name:            r.FormValue("name"),
		ShortName:       r.FormValue("short_name"),
		ThemeColor:      r.FormValue("theme_color"),
		BackgroundColor: r.FormValue("background_color"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeFile(w, out)
}

func (s *server) handleICO(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	sizes, err := ParseSizes(r.URL.Query().Get("sizes"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	surf, src, ok := s.upload(w, r)
	if !ok {
		return
	}
	out, err := s.gen.ICO(surf, src, sizes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeFile(w, out)
}

func (s *server) handlePNG(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	q := r.URL.Query()
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil {
		http.Error(w, "size query parameter must be an integer", http.StatusBadRequest)
		return
	}
	quality := pngenc.DefaultQuality
	if v := q.Get("quality"); v != "" {
		if quality, err = strconv.ParseFloat(v, 64); err != nil {
			http.Error(w, "quality must be a number", http.StatusBadRequest)
			return
		}
	}
	surf, src, ok := s.upload(w, r)
	if !ok {
		return
	}
	out, err := s.gen.PNG(surf, src, size, quality)
	if err != nil {
		writeError(w, err)
		return
	}
	writeFile(w, out)
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	days := 7
	if d := r.URL.Query().Get("days"); d != "" {
		if v, err := strconv.Atoi(d); err == nil && v >= 0 {
			days = v
		}
	}

	out := []jsonRecord{}
	if s.store != nil {
		recs, err := s.store.Entries(days)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		for _, rec := range recs {
			out = append(out, recordToJSON(rec))
		}
	}
	writeJSON(w, out)
}

type jsonRecord struct {
	Time   string `json:"time"`
	Kind   string `json:"kind"`
	Source string `json:"source"`
	Name   string `json:"name"`
	Sizes  []int  `json:"sizes"`
	Bytes  int64  `json:"bytes"`
	SHA256 string `json:"sha256"`
}

func recordToJSON(r history.Record) jsonRecord {
	return jsonRecord{
		Time:   r.Time.Format(time.RFC3339),
		Kind:   r.Kind,
		Source: r.Source,
		Name:   r.Name,
		Sizes:  r.Sizes,
		Bytes:  r.Bytes,
		SHA256: r.SHA256,
	}
}

// parseForm enforces POST and the upload limit, then parses the
// multipart form. It writes the error response and returns false on
// failure.
func (s *server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+formOverhead)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes + formOverhead); err != nil {
		if StatusFor(err) == http.StatusRequestEntityTooLarge {
			http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
			return false
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
			return false
		}
	}
	return true
}

// upload decodes the "image" form file.
func (s *server) upload(w http.ResponseWriter, r *http.Request) (*raster.Surface, string, bool) {
	file, hdr, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "an image file is required", http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()
	surf, _, err := source.Load(file, s.cfg.MaxUploadBytes)
	if err != nil {
		writeError(w, err)
		return nil, "", false
	}
	return surf, hdr.Filename, true
}

// textIcon renders the text form fields. fill_color paints the icon;
// background_color belongs to the manifest.
func textIcon(r *http.Request) (*raster.Surface, error) {
	opts := source.TextOptions{
		Text:            r.FormValue("text"),
		FontColor:       r.FormValue("font_color"),
		BackgroundColor: r.FormValue("fill_color"),
		FontWeight:      r.FormValue("font_weight"),
		FontStyle:       r.FormValue("font_style"),
		Shape:           r.FormValue("shape"),
	}
	if v := r.FormValue("font_size"); v != "" {
		size, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("font_size %q: %w", v, raster.ErrRange)
		}
		opts.FontSize = size
	}
	return source.TextIcon(opts)
}

// ParseSizes parses a comma-separated size list such as "16,32,48".
// An empty string gives nil.
func ParseSizes(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var sizes []int
	for _, p := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid size %q", p)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

// StatusFor maps a generation error onto an HTTP status code.
func StatusFor(err error) int {
	var tooBig *http.MaxBytesError
	switch {
	case errors.Is(err, source.ErrTooLarge), errors.As(err, &tooBig),
		strings.Contains(err.Error(), "request body too large"):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, raster.ErrRange), errors.Is(err, raster.ErrType),
		errors.Is(err, source.ErrUnsupported), errors.Is(err, source.ErrColor):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), StatusFor(err))
}

func writeFile(w http.ResponseWriter, out generate.Output) {
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.Write(out.Data)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
