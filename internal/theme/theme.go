// Package theme defines the light and dark palettes and decides which one
// a visitor sees.
package theme

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
)

type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// CookieName is the session cookie written by the theme toggle.
const CookieName = "theme"

// HintHeader is the client hint carrying the browser's colour scheme.
const HintHeader = "Sec-CH-Prefers-Color-Scheme"

// ParseMode accepts "light" or "dark" in any case.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", fmt.Errorf("unknown theme mode %q", s)
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

type Palette struct {
	Primary       string
	Secondary     string
	Background    string
	Paper         string
	TextPrimary   string
	TextSecondary string
	// HeroGradient is the radial gradient behind the hero section.
	HeroGradient string
	StarColor    string
}

var palettes = map[Mode]Palette{
	Light: {
		Primary:       "#3f51b5",
		Secondary:     "#f50057",
		Background:    "#f5f5f5",
		Paper:         "#ffffff",
		TextPrimary:   "#333333",
		TextSecondary: "#666666",
		HeroGradient:  "radial-gradient(circle at center, #e0f7fa 0%, #b2ebf2 70%, #80deea 100%)",
		StarColor:     "rgba(0, 0, 0, 0.6)",
	},
	Dark: {
		Primary:       "#7986cb",
		Secondary:     "#ff4081",
		Background:    "#121212",
		Paper:         "#1e1e1e",
		TextPrimary:   "#ffffff",
		TextSecondary: "#b0b0b0",
		HeroGradient:  "radial-gradient(circle at center, #1a1a2e 0%, #16213e 70%, #0f3460 100%)",
		StarColor:     "rgba(255, 255, 255, 0.8)",
	},
}

// CSS renders the palette as custom properties on :root.
func (p Palette) CSS() template.CSS {
	var b strings.Builder
	b.WriteString(":root {")
	for _, v := range [][2]string{
		{"--primary", p.Primary},
		{"--secondary", p.Secondary},
		{"--background", p.Background},
		{"--paper", p.Paper},
		{"--text-primary", p.TextPrimary},
		{"--text-secondary", p.TextSecondary},
		{"--hero-gradient", p.HeroGradient},
		{"--star-color", p.StarColor},
	} {
		fmt.Fprintf(&b, " %s: %s;", v[0], v[1])
	}
	b.WriteString(" }")
	return template.CSS(b.String())
}

// SchemeCSS renders the palette of m inside a prefers-color-scheme media
// query, so browsers that sent no hint still follow their own setting.
func SchemeCSS(m Mode) template.CSS {
	return template.CSS(fmt.Sprintf("@media (prefers-color-scheme: %s) { %s }", m, PaletteFor(m).CSS()))
}

// PaletteFor returns the palette of m, falling back to Light.
func PaletteFor(m Mode) Palette {
	if p, ok := palettes[m]; ok {
		return p
	}
	return palettes[Light]
}

// Provider reports the colour scheme a request prefers.
type Provider interface {
	Preference(r *http.Request) Mode
}

// RequestProvider reads the toggle cookie first, then the
// Sec-CH-Prefers-Color-Scheme client hint, then falls back to Default.
type RequestProvider struct {
	Default Mode
}

func (p RequestProvider) Preference(r *http.Request) Mode {
	if m, ok := requested(r); ok {
		return m
	}
	if p.Default == "" {
		return Light
	}
	return p.Default
}

// Pinned reports whether r names a mode through the toggle cookie or the
// client hint. Unpinned pages need the media query fallback.
func Pinned(r *http.Request) bool {
	_, ok := requested(r)
	return ok
}

func requested(r *http.Request) (Mode, bool) {
	if c, err := r.Cookie(CookieName); err == nil {
		if m, err := ParseMode(c.Value); err == nil {
			return m, true
		}
	}
	if hint := r.Header.Get(HintHeader); hint != "" {
		if m, err := ParseMode(strings.Trim(hint, `"`)); err == nil {
			return m, true
		}
	}
	return "", false
}

// Cookie builds the session cookie that pins m. It has no expiry so the
// choice ends with the browser session.
func Cookie(m Mode) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    string(m),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
