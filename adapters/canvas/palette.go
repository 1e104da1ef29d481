package reportcanvas

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Palette holds the hex colours used to paint a page.
type Palette struct {
	Background string
	Text       string
	Heading    string
	CoverBar   string
	Needle     string
}

// DefaultPalette returns the report theme.
func DefaultPalette() Palette {
	return Palette{
		Background: "#080029",
		Text:       "#FFFFFF",
		Heading:    "#00BFFF",
		CoverBar:   "#33cae5",
		Needle:     "#FFFFFF",
	}
}

type resolvedPalette struct {
	background color.RGBA
	text       color.RGBA
	heading    color.RGBA
	coverBar   color.RGBA
	needle     color.RGBA
}

func (p Palette) withDefaults() Palette {
	defaults := DefaultPalette()
	if p.Background == "" {
		p.Background = defaults.Background
	}
	if p.Text == "" {
		p.Text = defaults.Text
	}
	if p.Heading == "" {
		p.Heading = defaults.Heading
	}
	if p.CoverBar == "" {
		p.CoverBar = defaults.CoverBar
	}
	if p.Needle == "" {
		p.Needle = defaults.Needle
	}
	return p
}

func (p Palette) resolve() (resolvedPalette, error) {
	p = p.withDefaults()
	var out resolvedPalette
	var err error
	if out.background, err = parseHexColor(p.Background); err != nil {
		return out, err
	}
	if out.text, err = parseHexColor(p.Text); err != nil {
		return out, err
	}
	if out.heading, err = parseHexColor(p.Heading); err != nil {
		return out, err
	}
	if out.coverBar, err = parseHexColor(p.CoverBar); err != nil {
		return out, err
	}
	if out.needle, err = parseHexColor(p.Needle); err != nil {
		return out, err
	}
	return out, nil
}

// parseHexColor accepts #rgb and #rrggbb.
func parseHexColor(value string) (color.RGBA, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(raw) == 3 {
		raw = string([]byte{raw[0], raw[0], raw[1], raw[1], raw[2], raw[2]})
	}
	if len(raw) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", value)
	}
	n, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", value, err)
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}
