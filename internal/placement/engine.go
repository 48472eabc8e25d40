package placement

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat/combin"
)

// RenderedPlacement is the per-image output handed to the renderer: parallel
// arrays of item centers, plus the grid cells used (nil in free-field mode).
type RenderedPlacement struct {
	CellsUsed []int `json:"cells_used"`
	CenterX   []int `json:"center_x"`
	CenterY   []int `json:"center_y"`
}

// Len returns the number of items placed.
func (p RenderedPlacement) Len() int {
	return len(p.CenterX)
}

// Engine plans item centers for one stimulus maker.
//
// An Engine is built once per stimulus type and reused for every set size and
// condition. It is not safe for concurrent use.
type Engine struct {
	cfg  Config
	grid *Grid
	rng  *rand.Rand
}

// NewEngine validates cfg and returns an engine drawing from rng.
//
// Parameters:
//   - cfg: the placement geometry. cfg.Grid selects grid or free-field mode.
//   - rng: source of randomness. Must not be nil.
//
// Returns an error wrapping ErrInvalidConfig if cfg is malformed.
func NewEngine(cfg Config, rng *rand.Rand) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, rng: rng}
	if cfg.Grid != nil {
		g, err := NewGrid(*cfg.Grid, cfg)
		if err != nil {
			return nil, err
		}
		e.grid = g
	}
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Grid returns the derived grid geometry, or nil in free-field mode.
func (e *Engine) Grid() *Grid {
	return e.grid
}

// Rand exposes the engine's random source so role assignment for a group can share it.
func (e *Engine) Rand() *rand.Rand {
	return e.rng
}

func (e *Engine) coin() bool {
	return e.rng.Intn(2) == 0
}

func (e *Engine) checkSetSize(setSize int) error {
	if setSize <= 0 {
		return fmt.Errorf("%w: set size must be greater than zero, got %d", ErrInvalidSetSize, setSize)
	}
	if e.grid != nil && setSize > e.grid.NumCells() {
		return fmt.Errorf("%w: set size %d cannot be greater than number of elements in grid, %d",
			ErrInvalidSetSize, setSize, e.grid.NumCells())
	}
	return nil
}

// Plan returns numImages grid assignments for one set size.
//
// Parameters:
//   - setSize: items per image. Must be in [1, rows*cols].
//   - numImages: number of images in the group.
//   - unique: when true no two assignments share both cells and jitter.
//
// When unique is set and numImages does not exceed C(cells, setSize), distinct cell
// combinations are drawn without replacement and jitter is drawn per item. Beyond
// that, combinations repeat and uniqueness is carried by jitter; if
// C(cells, setSize) * (jitter+1)^2 < numImages the request fails with *InfeasibleError
// before anything is sampled. Without unique, every image is an independent draw.
//
// The jitter range is fixed for the whole call.
func (e *Engine) Plan(setSize, numImages int, unique bool) ([]Assignment, error) {
	if e.grid == nil {
		return nil, ErrNoGrid
	}
	if err := e.checkSetSize(setSize); err != nil {
		return nil, err
	}
	if numImages < 0 {
		return nil, fmt.Errorf("%w: number of images must be non-negative, got %d", ErrInvalidConfig, numImages)
	}

	jr, err := NewJitterRange(e.cfg.Jitter, e.coin)
	if err != nil {
		return nil, err
	}

	n := e.grid.NumCells()
	var plan []Assignment
	switch {
	case !unique:
		plan = e.planIndependent(jr, n, setSize, numImages)
	case numImages <= CountCombinations(n, setSize):
		plan = e.planDistinct(jr, n, setSize, numImages)
	default:
		plan, err = e.planRepeated(jr, n, setSize, numImages)
		if err != nil {
			return nil, err
		}
	}

	if unique {
		ledger := NewLedger()
		for i, a := range plan {
			if !ledger.Add(a) {
				return nil, fmt.Errorf("%w: image %d repeats %s", ErrDuplicatePlacement, i, a.Key())
			}
		}
	}
	return plan, nil
}

func (e *Engine) drawJitter(jr JitterRange, k int) []Offset {
	jit := make([]Offset, k)
	for i := range jit {
		jit[i] = jr.DrawOffset(e.rng)
	}
	return jit
}

func (e *Engine) planIndependent(jr JitterRange, n, k, m int) []Assignment {
	plan := make([]Assignment, 0, m)
	for i := 0; i < m; i++ {
		plan = append(plan, Assignment{
			Cells:  randomCombination(e.rng, n, k),
			Jitter: e.drawJitter(jr, k),
		})
	}
	return plan
}

func (e *Engine) planDistinct(jr JitterRange, n, k, m int) []Assignment {
	plan := make([]Assignment, 0, m)
	for _, cells := range distinctCombinations(e.rng, n, k, m) {
		plan = append(plan, Assignment{Cells: cells, Jitter: e.drawJitter(jr, k)})
	}
	return plan
}

// planRepeated covers numImages > C(n, k): every combination is used up to
// ceil(m / C) times, each repeat with a distinct jitter pair per item position,
// then the surplus is removed at random positions across all combinations.
func (e *Engine) planRepeated(jr JitterRange, n, k, m int) ([]Assignment, error) {
	cellCombs := CountCombinations(n, k)
	pairs := jr.Pairs()
	if Capacity(n, k, e.cfg.Jitter) < m {
		return nil, &InfeasibleError{
			CellCombinations: cellCombs,
			JitterPairs:      len(pairs),
			Requested:        m,
		}
	}

	numRepeat := (m-1)/cellCombs + 1
	plan := make([]Assignment, 0, cellCombs*numRepeat)

	gen := combin.NewCombinationGenerator(n, k)
	for gen.Next() {
		cells := CellCombination(gen.Combination(nil))

		// perPos[p][r] is the pair used at item position p by repeat r.
		perPos := make([][]int, k)
		for p := range perPos {
			perPos[p] = e.rng.Perm(len(pairs))[:numRepeat]
		}
		for r := 0; r < numRepeat; r++ {
			jit := make([]Offset, k)
			for p := range jit {
				jit[p] = pairs[perPos[p][r]]
			}
			plan = append(plan, Assignment{Cells: cells, Jitter: jit})
		}
	}

	if surplus := len(plan) - m; surplus > 0 {
		drop := make(map[int]struct{}, surplus)
		for _, idx := range sampleIndices(e.rng, len(plan), surplus) {
			drop[idx] = struct{}{}
		}
		kept := plan[:0]
		for i, a := range plan {
			if _, ok := drop[i]; !ok {
				kept = append(kept, a)
			}
		}
		plan = kept
	}

	e.rng.Shuffle(len(plan), func(a, b int) { plan[a], plan[b] = plan[b], plan[a] })
	return plan, nil
}

// Place converts an assignment into pixel centers: cell center plus item jitter.
// It must only be called on a grid engine.
func (e *Engine) Place(a Assignment) RenderedPlacement {
	p := RenderedPlacement{
		CellsUsed: append([]int(nil), a.Cells...),
		CenterX:   make([]int, len(a.Cells)),
		CenterY:   make([]int, len(a.Cells)),
	}
	for i, cell := range a.Cells {
		x, y := e.grid.CellCenter(cell)
		if i < len(a.Jitter) {
			x += a.Jitter[i].DX
			y += a.Jitter[i].DY
		}
		p.CenterX[i] = x
		p.CenterY[i] = y
	}
	return p
}
