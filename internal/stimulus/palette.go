package stimulus

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// defaultColors are the named colors every palette starts with.
var defaultColors = map[string]string{
	"black":          "#000000",
	"white":          "#FFFFFF",
	"red":            "#FF0000",
	"green":          "#00FF00",
	"blue":           "#0000FF",
	"red255green51":  "#FF3300",
	"green255red51":  "#33FF00",
	"red255green102": "#FF6600",
	"green255red102": "#66FF00",
	"red255green153": "#FF9900",
	"green255red153": "#99FF00",
	"red255green204": "#FFCC00",
	"green255red204": "#CCFF00",
}

// Palette maps color names to colors. It is immutable once built and safe for
// concurrent use.
type Palette struct {
	colors map[string]colorful.Color
}

// DefaultPalette returns the built-in named colors.
func DefaultPalette() *Palette {
	p, err := NewPalette(nil)
	if err != nil {
		// the built-in table is constant
		panic(err)
	}
	return p
}

// NewPalette returns the built-in colors extended (or overridden) by extra.
//
// Parameters:
//   - extra: name -> "#RRGGBB" entries. May be nil.
//
// Returns an error if any hex value cannot be parsed.
func NewPalette(extra map[string]string) (*Palette, error) {
	p := &Palette{colors: make(map[string]colorful.Color, len(defaultColors)+len(extra))}
	for name, hex := range defaultColors {
		if err := p.add(name, hex); err != nil {
			return nil, err
		}
	}
	for name, hex := range extra {
		if err := p.add(name, hex); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Palette) add(name, hex string) error {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("failed to parse color %q (%s): %w", name, hex, err)
	}
	p.colors[strings.ToLower(name)] = c
	return nil
}

// Color resolves a color name, or a literal "#RRGGBB" value, to an opaque RGBA.
func (p *Palette) Color(name string) (color.RGBA, error) {
	c, ok := p.colors[strings.ToLower(name)]
	if !ok {
		if !strings.HasPrefix(name, "#") {
			return color.RGBA{}, fmt.Errorf("unknown color %q", name)
		}
		var err error
		c, err = colorful.Hex(name)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("failed to parse color %q: %w", name, err)
		}
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Has reports whether name resolves to a color.
func (p *Palette) Has(name string) bool {
	_, err := p.Color(name)
	return err == nil
}

// Names lists the named colors in alphabetical order.
func (p *Palette) Names() []string {
	names := make([]string, 0, len(p.colors))
	for name := range p.colors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
