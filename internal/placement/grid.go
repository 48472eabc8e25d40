package placement

import (
	"fmt"
	"math"
)

// Size is a (height, width) pair in pixels.
type Size struct {
	H int `json:"h" yaml:"h"`
	W int `json:"w" yaml:"w"`
}

func (s Size) String() string {
	return fmt.Sprintf("(%d, %d)", s.H, s.W)
}

// GridSpec is the number of rows and columns of the placement grid.
type GridSpec struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// NumCells returns Rows * Cols.
func (g GridSpec) NumCells() int {
	return g.Rows * g.Cols
}

// Config describes the geometry shared by every image a stimulus maker produces.
//
// A Config is immutable once handed to an Engine.
type Config struct {
	// Window is the size of the whole image.
	Window Size

	// Border keeps items away from the window edge. Nil means no border.
	Border *Size

	// ItemBBox is the bounding box every item is drawn into.
	ItemBBox Size

	// Jitter is the maximum positional perturbation applied to grid centers.
	Jitter int

	// MinCenterDist is the minimum distance between item centers in free-field
	// mode. Nil means any distance is allowed. Ignored when Grid is set.
	MinCenterDist *int

	// Grid selects grid placement. Nil selects free-field placement.
	Grid *GridSpec
}

// Validate checks the configuration eagerly so that no sampling starts on bad input.
func (c Config) Validate() error {
	if c.Window.H <= 0 || c.Window.W <= 0 {
		return fmt.Errorf("%w: window size must be positive, got %s", ErrInvalidConfig, c.Window)
	}
	if c.ItemBBox.H <= 0 || c.ItemBBox.W <= 0 {
		return fmt.Errorf("%w: item bbox size must be positive, got %s", ErrInvalidConfig, c.ItemBBox)
	}
	if c.Jitter < 0 {
		return fmt.Errorf("%w: jitter must be a non-negative integer, got %d", ErrInvalidConfig, c.Jitter)
	}
	if c.Border != nil {
		if c.Border.H < 0 || c.Border.W < 0 {
			return fmt.Errorf("%w: border size must be non-negative, got %s", ErrInvalidConfig, *c.Border)
		}
		if c.Border.H >= c.Window.H || c.Border.W >= c.Window.W {
			return fmt.Errorf("%w: border %s leaves no room in window %s", ErrInvalidConfig, *c.Border, c.Window)
		}
	}
	if c.MinCenterDist != nil && *c.MinCenterDist < 0 {
		return fmt.Errorf("%w: min_center_dist must be non-negative, got %d", ErrInvalidConfig, *c.MinCenterDist)
	}
	if c.Grid != nil {
		if c.Grid.Rows <= 0 || c.Grid.Cols <= 0 {
			return fmt.Errorf("%w: values for grid size must be positive integers, got (%d, %d)",
				ErrInvalidConfig, c.Grid.Rows, c.Grid.Cols)
		}
		b := c.border()
		if c.Window.H-b.H < c.Grid.Rows || c.Window.W-b.W < c.Grid.Cols {
			return fmt.Errorf("%w: window %s with border %s leaves less than one pixel per cell of a %dx%d grid",
				ErrInvalidConfig, c.Window, b, c.Grid.Rows, c.Grid.Cols)
		}
	}
	return nil
}

// border returns the configured border or a zero Size.
func (c Config) border() Size {
	if c.Border == nil {
		return Size{}
	}
	return *c.Border
}

// Grid holds the pixel geometry derived from a GridSpec and a Config.
type Grid struct {
	Spec GridSpec

	// CellW and CellH are the cell dimensions in pixels.
	CellW int
	CellH int

	// CellXCenter and CellYCenter are subtracted from the far edge of a cell
	// to reach its center.
	CellXCenter int
	CellYCenter int

	// OffsetX and OffsetY shift every center by half the border.
	OffsetX int
	OffsetY int
}

// NewGrid derives cell sizes and centers for spec inside the window of cfg.
//
// The grid covers the window minus the border (or the whole window without one).
// Values are rounded half-to-even.
func NewGrid(spec GridSpec, cfg Config) (*Grid, error) {
	if spec.Rows <= 0 || spec.Cols <= 0 {
		return nil, fmt.Errorf("%w: values for grid size must be positive integers, got (%d, %d)",
			ErrInvalidConfig, spec.Rows, spec.Cols)
	}

	b := cfg.border()
	pxH := float64(cfg.Window.H - b.H)
	pxW := float64(cfg.Window.W - b.W)

	g := &Grid{
		Spec:        spec,
		CellH:       roundInt(pxH / float64(spec.Rows)),
		CellYCenter: roundInt(pxH / float64(spec.Rows) / 2),
		CellW:       roundInt(pxW / float64(spec.Cols)),
		CellXCenter: roundInt(pxW / float64(spec.Cols) / 2),
	}
	if cfg.Border != nil {
		g.OffsetY = roundInt(float64(b.H) / 2)
		g.OffsetX = roundInt(float64(b.W) / 2)
	}
	return g, nil
}

// NumCells returns the number of cells in the grid.
func (g *Grid) NumCells() int {
	return g.Spec.NumCells()
}

// CellCoords returns the 1-based (row, column) of cell i.
func (g *Grid) CellCoords(i int) (y, x int) {
	return i/g.Spec.Cols + 1, i%g.Spec.Cols + 1
}

// CellCenter returns the pixel center of cell i, border offset included.
func (g *Grid) CellCenter(i int) (x, y int) {
	gy, gx := g.CellCoords(i)
	x = gx*g.CellW - g.CellXCenter + g.OffsetX
	y = gy*g.CellH - g.CellYCenter + g.OffsetY
	return x, y
}

func roundInt(v float64) int {
	return int(math.RoundToEven(v))
}
