// Package render draws the live terminal frame: colored progress bars, one
// status line per bundle, rewritten in place on every pass.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ColorKind discriminates the supported color representations.
type ColorKind int

const (
	// ColorNamed is a color from the fixed name table, stored as an
	// ANSI-256 code.
	ColorNamed ColorKind = iota
	// ColorHex is a literal #rrggbb value.
	ColorHex
)

// Color is a display color resolved once at construction, never per render.
type Color struct {
	kind ColorKind
	code string
}

// ANSI-256 codes for the recognized color names.
var namedColors = map[string]string{
	"black":   "0",
	"red":     "196",
	"green":   "42",
	"yellow":  "220",
	"blue":    "33",
	"magenta": "201",
	"cyan":    "81",
	"white":   "255",
	"gray":    "245",
	"grey":    "245",
	"orange":  "214",
}

// DefaultColor is used when an option leaves the color unset or names an
// unknown color.
var DefaultColor = Color{kind: ColorNamed, code: namedColors["green"]}

// ParseColor resolves a color name or #hex literal. Unknown names fall back
// to DefaultColor so a bad option can never break rendering.
func ParseColor(s string) Color {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "#") {
		return Color{kind: ColorHex, code: s}
	}
	if code, ok := namedColors[s]; ok {
		return Color{kind: ColorNamed, code: code}
	}
	return DefaultColor
}

// Kind reports which representation the color resolved to.
func (c Color) Kind() ColorKind {
	return c.kind
}

// Style returns a lipgloss style with the color as foreground.
func (c Color) Style() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c.terminal())
}

func (c Color) terminal() lipgloss.Color {
	if c.code == "" {
		return lipgloss.Color(DefaultColor.code)
	}
	return lipgloss.Color(c.code)
}
