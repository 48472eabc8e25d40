package stimulus

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/searchstims/internal/placement"
)

// glyphPoints is the size glyphs are rasterized at before scaling to the bbox.
const glyphPoints = 64

var (
	boldOnce sync.Once
	boldFont *opentype.Font
	boldErr  error
)

func loadBold() (*opentype.Font, error) {
	boldOnce.Do(func() {
		boldFont, boldErr = opentype.Parse(gobold.TTF)
	})
	return boldFont, boldErr
}

type glyphStyle struct {
	text     string
	color    color.RGBA
	rotation int
}

type glyph struct {
	mask  *image.NRGBA
	color color.RGBA
}

// glyphRenderer stamps pre-rasterized glyph masks. Masks are built once, so
// Draw only reads shared state.
type glyphRenderer struct {
	split  *classSplit
	glyphs map[string]glyph
}

func newGlyphRenderer(bbox placement.Size, split *classSplit, styles map[string]glyphStyle) (*glyphRenderer, error) {
	r := &glyphRenderer{split: split, glyphs: make(map[string]glyph, len(styles))}
	for class, st := range styles {
		m, err := GlyphMask(st.text, bbox, st.rotation)
		if err != nil {
			return nil, err
		}
		r.glyphs[class] = glyph{mask: m, color: st.color}
	}
	return r, nil
}

func (r *glyphRenderer) Symbols(rng *rand.Rand, roles placement.Roles) []string {
	return symbols(rng, roles, r.split)
}

func (r *glyphRenderer) Draw(dst draw.Image, item Item) {
	g, ok := r.glyphs[item.Class]
	if !ok {
		return
	}
	b := g.mask.Bounds()
	at := item.Center.Sub(image.Pt(b.Dx()/2, b.Dy()/2))
	draw.DrawMask(dst, b.Sub(b.Min).Add(at), &image.Uniform{C: g.color}, image.Point{}, g.mask, b.Min, draw.Over)
}

// GlyphMask rasterizes text in Go Bold, crops it to its ink, stretches it to size
// and rotates it counter-clockwise by rotation degrees. The result is white with
// coverage in the alpha channel; rotation enlarges the mask to fit.
func GlyphMask(text string, size placement.Size, rotation int) (*image.NRGBA, error) {
	fnt, err := loadBold()
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    glyphPoints,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	defer face.Close()

	ink, _ := font.BoundString(face, text)
	w := (ink.Max.X - ink.Min.X).Ceil()
	h := (ink.Max.Y - ink.Min.Y).Ceil()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("glyph %q has no ink", text)
	}

	src := image.NewNRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  src,
		Src:  image.White,
		Face: face,
		Dot:  fixed.Point26_6{X: -ink.Min.X, Y: -ink.Min.Y},
	}
	d.DrawString(text)

	m := imaging.Resize(src, size.W, size.H, imaging.Lanczos)
	if rotation%360 != 0 {
		m = imaging.Rotate(m, float64(rotation), color.Transparent)
	}
	return m, nil
}
