// Package manifest builds the site.webmanifest shipped with a favicon pack.
package manifest

import (
	"encoding/json"
	"fmt"
)

// FileName is the name the manifest is stored under in a pack.
const FileName = "site.webmanifest"

// Icon is one entry of the manifest's icons array.
type Icon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose,omitempty"`
}

// Manifest is the subset of the Web App Manifest a favicon pack needs.
type Manifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	Icons           []Icon `json:"icons"`
	ThemeColor      string `json:"theme_color"`
	BackgroundColor string `json:"background_color"`
	Display         string `json:"display"`
}

// Options overrides the defaults. Empty fields keep them.
type Options struct {
	Name            string
	ShortName       string
	ThemeColor      string
	BackgroundColor string
	Display         string
}

// New returns a manifest referencing the Android Chrome icons of a pack.
func New(opts Options) Manifest {
	m := Manifest{
		Name:      opts.Name,
		ShortName: opts.ShortName,
		Icons: []Icon{
			{Src: "/android-chrome-192x192.png", Sizes: "192x192", Type: "image/png"},
			{Src: "/android-chrome-512x512.png", Sizes: "512x512", Type: "image/png"},
		},
		ThemeColor:      "#ffffff",
		BackgroundColor: "#ffffff",
		Display:         "standalone",
	}
	if opts.ThemeColor != "" {
		m.ThemeColor = opts.ThemeColor
	}
	if opts.BackgroundColor != "" {
		m.BackgroundColor = opts.BackgroundColor
	}
	if opts.Display != "" {
		m.Display = opts.Display
	}
	return m
}

// Marshal returns the manifest as two-space indented JSON.
func (m Manifest) Marshal() ([]byte, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("manifest: marshal: %w", err)
	}
	return b, nil
}
