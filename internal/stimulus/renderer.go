package stimulus

import (
	"fmt"
	"image/draw"
	"math/rand"
	"strings"

	"github.com/ironsheep/searchstims/internal/placement"
)

// Flavor names a family of items.
type Flavor string

const (
	FlavorRectangle            Flavor = "rectangle"
	FlavorRectangleConjunction Flavor = "rectangle_conjunction"
	FlavorNumber               Flavor = "number"
	FlavorTL                   Flavor = "tl"
	FlavorXO                   Flavor = "xo"
)

// Flavors lists every supported flavor.
func Flavors() []Flavor {
	return []Flavor{FlavorRectangle, FlavorRectangleConjunction, FlavorNumber, FlavorTL, FlavorXO}
}

// ParseFlavor resolves a flavor name, case-insensitively.
func ParseFlavor(s string) (Flavor, error) {
	f := Flavor(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Flavors() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown stimulus flavor %q", s)
}

// IsGlyph reports whether items of this flavor are drawn from font glyphs.
func (f Flavor) IsGlyph() bool {
	return f == FlavorNumber || f == FlavorTL || f == FlavorXO
}

// Distractor classes of the split flavors.
const (
	ClassVertical   = "V"
	ClassHorizontal = "H"
	ClassX          = "x"
	ClassO          = "o"
)

// Options configures an ItemRenderer.
type Options struct {
	Flavor   Flavor
	ItemBBox placement.Size

	TargetColor     string
	DistractorColor string

	// AltDistractorColor colors the second distractor class of xo ("o").
	AltDistractorColor string

	// TargetNumber and DistractorNumber are the digits of the number flavor.
	TargetNumber     int
	DistractorNumber int

	// TargetRotation is the counter-clockwise rotation of the tl target, in degrees.
	TargetRotation int
}

// DefaultOptions returns the stock colors and glyphs of a flavor.
func DefaultOptions(f Flavor) Options {
	o := Options{
		Flavor:           f,
		ItemBBox:         placement.Size{H: 30, W: 30},
		TargetColor:      "red",
		DistractorColor:  "green",
		TargetNumber:     2,
		DistractorNumber: 5,
		TargetRotation:   90,
	}
	switch f {
	case FlavorNumber, FlavorTL:
		o.TargetColor = "white"
		o.DistractorColor = "white"
	case FlavorXO:
		o.TargetColor = "blue"
		o.DistractorColor = "red"
		o.AltDistractorColor = "red"
	}
	return o
}

// Validate checks the options that do not depend on a palette.
func (o Options) Validate() error {
	if _, err := ParseFlavor(string(o.Flavor)); err != nil {
		return err
	}
	if o.ItemBBox.H <= 0 || o.ItemBBox.W <= 0 {
		return fmt.Errorf("item bbox size must be positive, got %s", o.ItemBBox)
	}
	switch o.Flavor {
	case FlavorNumber:
		for _, n := range []int{o.TargetNumber, o.DistractorNumber} {
			if n != 2 && n != 5 {
				return fmt.Errorf("number must be one of {2, 5}, got %d", n)
			}
		}
		if o.TargetNumber == o.DistractorNumber {
			return fmt.Errorf("target and distractor number must differ, both are %d", o.TargetNumber)
		}
	case FlavorTL:
		if o.TargetRotation <= 0 || o.TargetRotation >= 360 {
			return fmt.Errorf("target_rotation must be an integer between 1 and 359, got %d", o.TargetRotation)
		}
	}
	return nil
}

// ItemRenderer draws the items of one flavor.
//
// Symbols consumes randomness and belongs to the planning pass. Draw is
// read-only on the renderer and may run concurrently on distinct surfaces.
type ItemRenderer interface {
	// Symbols returns the class of every item: "t" for targets and the flavor's
	// distractor class for the rest.
	Symbols(rng *rand.Rand, roles placement.Roles) []string

	// Draw paints item into dst, clipped to dst's bounds.
	Draw(dst draw.Image, item Item)
}

// NewRenderer builds the renderer for opts.Flavor, resolving colors through pal.
func NewRenderer(opts Options, pal *Palette) (ItemRenderer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	target, err := pal.Color(opts.TargetColor)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target color: %w", err)
	}
	distractor, err := pal.Color(opts.DistractorColor)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve distractor color: %w", err)
	}

	switch opts.Flavor {
	case FlavorRectangle:
		return &barRenderer{target: target, distractor: distractor}, nil
	case FlavorRectangleConjunction:
		return &barRenderer{target: target, distractor: distractor, conjunction: true}, nil
	case FlavorNumber:
		return newGlyphRenderer(opts.ItemBBox, nil, map[string]glyphStyle{
			placement.SymbolTarget:     {text: fmt.Sprint(opts.TargetNumber), color: target},
			placement.SymbolDistractor: {text: fmt.Sprint(opts.DistractorNumber), color: distractor},
		})
	case FlavorTL:
		return newGlyphRenderer(opts.ItemBBox, nil, map[string]glyphStyle{
			placement.SymbolTarget:     {text: "T", color: target, rotation: opts.TargetRotation},
			placement.SymbolDistractor: {text: "L", color: distractor},
		})
	case FlavorXO:
		altName := opts.AltDistractorColor
		if altName == "" {
			altName = opts.DistractorColor
		}
		alt, err := pal.Color(altName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve alternate distractor color: %w", err)
		}
		return newGlyphRenderer(opts.ItemBBox, &classSplit{ClassX, ClassO}, map[string]glyphStyle{
			placement.SymbolTarget: {text: "x", color: target},
			ClassX:                 {text: "x", color: distractor},
			ClassO:                 {text: "o", color: alt},
		})
	}
	return nil, fmt.Errorf("unknown stimulus flavor %q", opts.Flavor)
}

// classSplit divides distractors evenly between two classes.
type classSplit struct {
	a, b string
}

// symbols assigns "t" to targets and a distractor class to everything else.
// With a split, distractors are divided in half between the two classes; an odd
// remainder goes to a coin flip and the classes are shuffled over positions.
func symbols(rng *rand.Rand, roles placement.Roles, split *classSplit) []string {
	out := make([]string, roles.Len())
	for _, i := range roles.Targets {
		out[i] = placement.SymbolTarget
	}
	if split == nil {
		for _, i := range roles.Distractors {
			out[i] = placement.SymbolDistractor
		}
		return out
	}

	n := len(roles.Distractors)
	na := n / 2
	if n%2 == 1 && rng.Intn(2) == 0 {
		na++
	}
	classes := make([]string, n)
	for i := range classes {
		if i < na {
			classes[i] = split.a
		} else {
			classes[i] = split.b
		}
	}
	rng.Shuffle(n, func(i, j int) { classes[i], classes[j] = classes[j], classes[i] })
	for k, i := range roles.Distractors {
		out[i] = classes[k]
	}
	return out
}
