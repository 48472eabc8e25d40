package placement

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig reports a malformed placement configuration.
	ErrInvalidConfig = errors.New("invalid placement config")

	// ErrInvalidSetSize reports a set size that is not positive or exceeds the grid.
	ErrInvalidSetSize = errors.New("invalid set size")

	// ErrInvalidTargetCount reports a target count outside [0, set size].
	ErrInvalidTargetCount = errors.New("invalid number of targets")

	// ErrNoGrid is returned when a grid operation is requested from a free-field engine.
	ErrNoGrid = errors.New("no grid configured")

	// ErrDuplicatePlacement means the uniqueness ledger saw the same geometry twice.
	ErrDuplicatePlacement = errors.New("duplicate placement in unique batch")
)

// InfeasibleError is returned when a unique batch asks for more images than there
// are distinct (cell combination, jitter) pairs.
type InfeasibleError struct {
	CellCombinations int
	JitterPairs      int
	Requested        int
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("cannot generate unique item locations for %d images: "+
		"%d cell combinations x %d jitter pairs = %d distinct placements",
		e.Requested, e.CellCombinations, e.JitterPairs, e.Capacity())
}

// Capacity returns CellCombinations * JitterPairs, saturating at math.MaxInt.
func (e *InfeasibleError) Capacity() int {
	return saturatingMul(e.CellCombinations, e.JitterPairs)
}

// GeometryError is returned when free-field sampling exhausts its retry budget.
type GeometryError struct {
	SetSize       int
	MinCenterDist int
	Window        Size
	Border        Size
	ItemBBox      Size
	Attempts      int
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("could not find suitable co-ordinates for set size %d after %d attempts "+
		"(min_center_dist=%d, window=%s, border=%s, item_bbox=%s)",
		e.SetSize, e.Attempts, e.MinCenterDist, e.Window, e.Border, e.ItemBBox)
}
