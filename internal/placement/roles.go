package placement

import (
	"fmt"
	"math/rand"
	"sort"
)

// Role is the part an item plays in a visual search display.
type Role int

const (
	// Distractor is any item that is not the search target.
	Distractor Role = iota
	// Target is the item class the observer searches for.
	Target
)

func (r Role) String() string {
	if r == Target {
		return "target"
	}
	return "distractor"
}

// Symbols used in the grid-as-char encoding.
const (
	SymbolEmpty      = ""
	SymbolTarget     = "t"
	SymbolDistractor = "d"
)

// Roles is the target/distractor split of one image's items.
type Roles struct {
	// Targets holds the target item indices in ascending order.
	Targets []int
	// Distractors holds the remaining item indices in ascending order.
	Distractors []int

	roles []Role
}

// AssignRoles picks numTarget distinct items out of setSize to be targets.
//
// Targets are sampled without replacement so an image always shows exactly
// numTarget targets. Every other index is a distractor.
func AssignRoles(rng *rand.Rand, setSize, numTarget int) (Roles, error) {
	if setSize <= 0 {
		return Roles{}, fmt.Errorf("%w: set size must be greater than zero, got %d", ErrInvalidSetSize, setSize)
	}
	if numTarget < 0 {
		return Roles{}, fmt.Errorf("%w: number of targets must be greater than or equal to zero, got %d",
			ErrInvalidTargetCount, numTarget)
	}
	if numTarget > setSize {
		return Roles{}, fmt.Errorf("%w: number of targets %d cannot be greater than set size %d",
			ErrInvalidTargetCount, numTarget, setSize)
	}

	r := Roles{roles: make([]Role, setSize)}
	targets := rng.Perm(setSize)[:numTarget]
	for _, t := range targets {
		r.roles[t] = Target
	}
	sort.Ints(targets)
	r.Targets = targets
	r.Distractors = make([]int, 0, setSize-numTarget)
	for i, role := range r.roles {
		if role == Distractor {
			r.Distractors = append(r.Distractors, i)
		}
	}
	return r, nil
}

// Len returns the set size.
func (r Roles) Len() int {
	return len(r.roles)
}

// Of returns the role of item i.
func (r Roles) Of(i int) Role {
	return r.roles[i]
}

// All returns the role of every item in index order.
func (r Roles) All() []Role {
	return append([]Role(nil), r.roles...)
}

// GridAsChar lays out item symbols on a rows x cols matrix.
//
// cells[i] is the grid cell of item i and symbols[i] its symbol ("t", "d", or a
// flavor-specific distractor class). Unused cells hold the empty string.
func GridAsChar(spec GridSpec, cells []int, symbols []string) ([][]string, error) {
	if len(cells) != len(symbols) {
		return nil, fmt.Errorf("%w: %d cells but %d symbols", ErrInvalidConfig, len(cells), len(symbols))
	}
	grid := make([][]string, spec.Rows)
	for row := range grid {
		grid[row] = make([]string, spec.Cols)
	}
	for i, cell := range cells {
		if cell < 0 || cell >= spec.NumCells() {
			return nil, fmt.Errorf("%w: cell %d outside grid of %d cells", ErrInvalidConfig, cell, spec.NumCells())
		}
		grid[cell/spec.Cols][cell%spec.Cols] = symbols[i]
	}
	return grid, nil
}
