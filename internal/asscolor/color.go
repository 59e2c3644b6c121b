// Package asscolor parses and formats the colour notations found in ASS/SSA
// scripts: style colours (&HAABBGGRR), override colours (&HBBGGRR&), legacy
// SSA decimal colours and HTML #RRGGBB.
package asscolor

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGBA colour. A is ASS transparency: 0 is opaque, 255 invisible.
type Color struct {
	R, G, B, A uint8
}

// Common colours used by the default style.
var (
	White = Color{R: 255, G: 255, B: 255}
	Black = Color{}
	Red   = Color{R: 255}
)

// Parse reads any supported colour notation. Unrecognised input yields
// black, matching how renderers treat damaged colour fields.
func Parse(text string) Color {
	c, _ := ParseStrict(text)
	return c
}

// ParseStrict reads a colour and reports whether the notation was valid.
func ParseStrict(text string) (Color, error) {
	s := strings.TrimSpace(text)
	switch {
	case s == "":
		return Color{}, fmt.Errorf("colour: empty value")
	case strings.HasPrefix(s, "#"):
		return parseHTML(s[1:])
	case strings.HasPrefix(s, "&"):
		return parseASS(s)
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Color{}, fmt.Errorf("colour: invalid value %q", text)
		}
		return fromBGR(uint32(n)), nil
	}
}

func parseASS(s string) (Color, error) {
	s = strings.TrimPrefix(s, "&")
	if len(s) > 0 && (s[0] == 'H' || s[0] == 'h') {
		s = s[1:]
	}
	s = strings.TrimSuffix(s, "&")
	if s == "" || len(s) > 8 {
		return Color{}, fmt.Errorf("colour: invalid ass value %q", s)
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("colour: invalid ass value %q", s)
	}
	return fromBGR(uint32(n)), nil
}

func parseHTML(s string) (Color, error) {
	if len(s) != 6 {
		return Color{}, fmt.Errorf("colour: invalid html value %q", s)
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("colour: invalid html value %q", s)
	}
	return Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

func fromBGR(n uint32) Color {
	return Color{R: uint8(n), G: uint8(n >> 8), B: uint8(n >> 16), A: uint8(n >> 24)}
}

// AssStyle formats the colour as used in Style lines: &HAABBGGRR.
func (c Color) AssStyle() string {
	return fmt.Sprintf("&H%02X%02X%02X%02X", c.A, c.B, c.G, c.R)
}

// AssOverride formats the colour as used by \c tags: &HBBGGRR&.
func (c Color) AssOverride() string {
	return fmt.Sprintf("&H%02X%02X%02X&", c.B, c.G, c.R)
}

// Ssa formats the colour as a legacy SSA decimal value.
func (c Color) Ssa() string {
	return strconv.FormatUint(uint64(c.B)<<16|uint64(c.G)<<8|uint64(c.R), 10)
}

// HTML formats the colour as #RRGGBB, dropping alpha.
func (c Color) HTML() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// AlphaOverride formats an alpha value as used by \alpha and \1a-\4a tags.
func AlphaOverride(a uint8) string {
	return fmt.Sprintf("&H%02X&", a)
}
