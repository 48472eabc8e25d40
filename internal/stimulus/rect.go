package stimulus

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"

	"github.com/ironsheep/searchstims/internal/placement"
)

// barRenderer draws solid bars one third of the item bbox thick.
//
// In conjunction mode the target is a vertical bar of the target color and the
// distractors are split between vertical bars of the distractor color ("V") and
// horizontal bars of the target color ("H").
type barRenderer struct {
	target      color.RGBA
	distractor  color.RGBA
	conjunction bool
}

func (r *barRenderer) Symbols(rng *rand.Rand, roles placement.Roles) []string {
	if r.conjunction {
		return symbols(rng, roles, &classSplit{ClassVertical, ClassHorizontal})
	}
	return symbols(rng, roles, nil)
}

func (r *barRenderer) Draw(dst draw.Image, item Item) {
	c, horizontal := r.style(item)
	draw.Draw(dst, BarRect(item.BBox, horizontal), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func (r *barRenderer) style(item Item) (color.RGBA, bool) {
	switch {
	case item.Role == placement.Target:
		return r.target, false
	case r.conjunction && item.Class == ClassHorizontal:
		return r.target, true
	default:
		return r.distractor, false
	}
}

// BarRect returns the middle third of bbox: a vertical strip, or a horizontal
// one when horizontal is set.
func BarRect(bbox image.Rectangle, horizontal bool) image.Rectangle {
	if horizontal {
		h := bbox.Dy() / 3
		return image.Rect(bbox.Min.X, bbox.Min.Y+h, bbox.Max.X, bbox.Min.Y+2*h)
	}
	w := bbox.Dx() / 3
	return image.Rect(bbox.Min.X+w, bbox.Min.Y, bbox.Min.X+2*w, bbox.Max.Y)
}
