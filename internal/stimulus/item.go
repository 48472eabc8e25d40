package stimulus

import (
	"image"

	"github.com/ironsheep/searchstims/internal/placement"
)

// Item is one drawn element of a display.
type Item struct {
	Index  int
	Role   placement.Role
	Class  string
	Center image.Point
	BBox   image.Rectangle
}

// ItemBBox returns the bounding box of size centered on c.
// The top-left corner is c minus half the size, rounded down.
func ItemBBox(c image.Point, size placement.Size) image.Rectangle {
	x0 := c.X - size.W/2
	y0 := c.Y - size.H/2
	return image.Rect(x0, y0, x0+size.W, y0+size.H)
}

// Object is a Pascal VOC style annotation of one item.
type Object struct {
	Name string `json:"name"`
	XMin int    `json:"xmin"`
	YMin int    `json:"ymin"`
	XMax int    `json:"xmax"`
	YMax int    `json:"ymax"`
}

// Stimulus is a rendered display plus its labels.
type Stimulus struct {
	Surface *image.RGBA
	Items   []Item

	// GridAsChar is nil for free-field displays.
	GridAsChar [][]string

	// TargetIndices and DistractorIndices hold item centers as (x, y).
	TargetIndices     [][2]int
	DistractorIndices [][2]int
}

// Objects returns one annotation per item, in item order.
// Targets are named "t"; distractors carry their class prefixed with "d"
// unless the class already is "d".
func (s *Stimulus) Objects() []Object {
	objs := make([]Object, 0, len(s.Items))
	for _, it := range s.Items {
		objs = append(objs, Object{
			Name: objectName(it),
			XMin: it.BBox.Min.X,
			YMin: it.BBox.Min.Y,
			XMax: it.BBox.Max.X,
			YMax: it.BBox.Max.Y,
		})
	}
	return objs
}

func objectName(it Item) string {
	if it.Role == placement.Target {
		return placement.SymbolTarget
	}
	if it.Class == placement.SymbolDistractor || it.Class == "" {
		return placement.SymbolDistractor
	}
	return placement.SymbolDistractor + it.Class
}
