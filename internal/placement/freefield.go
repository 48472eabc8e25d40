package placement

import (
	"fmt"
	"math"
)

// Retry budget for free-field sampling.
const (
	// MaxDrawsInner is the number of candidate centers drawn before the partial
	// layout is discarded and sampling starts over.
	MaxDrawsInner = 1000

	// MaxDrawsOuter is the number of fresh starts allowed before giving up.
	MaxDrawsOuter = 100
)

// span is the half-open interval [lo, hi) of valid center coordinates on one axis.
type span struct {
	lo, hi int
}

func (s span) empty() bool {
	return s.hi <= s.lo
}

// FreeFieldBounds returns the half-open ranges of valid item centers,
// [border + bbox/2, window - border - bbox/2), on the x and y axes.
func (e *Engine) FreeFieldBounds() (xlo, xhi, ylo, yhi int) {
	x, y := e.freeFieldSpans()
	return x.lo, x.hi, y.lo, y.hi
}

func (e *Engine) freeFieldSpans() (x, y span) {
	b := e.cfg.border()
	bb := e.cfg.ItemBBox
	y = span{lo: b.H + bb.H/2, hi: e.cfg.Window.H - b.H - bb.H/2}
	x = span{lo: b.W + bb.W/2, hi: e.cfg.Window.W - b.W - bb.W/2}
	return x, y
}

// FreeField rejection-samples setSize item centers anywhere in the window.
//
// A candidate is accepted only if it is at least MinCenterDist (Euclidean) away
// from every center accepted so far. After MaxDrawsInner draws without completing
// the layout the partial layout is cleared; after MaxDrawsOuter such restarts the
// configuration is reported as unsatisfiable with *GeometryError.
//
// A set size of 1 accepts the first candidate.
func (e *Engine) FreeField(setSize int) (RenderedPlacement, error) {
	if err := e.checkSetSize(setSize); err != nil {
		return RenderedPlacement{}, err
	}

	xs, ys := e.freeFieldSpans()
	if xs.empty() || ys.empty() {
		return RenderedPlacement{}, fmt.Errorf("%w: no room for item bbox %s in window %s with border %s",
			ErrInvalidConfig, e.cfg.ItemBBox, e.cfg.Window, e.cfg.border())
	}

	minDist := 0
	if e.cfg.MinCenterDist != nil {
		minDist = *e.cfg.MinCenterDist
	}

	for outer := 0; outer < MaxDrawsOuter; outer++ {
		cx := make([]int, 0, setSize)
		cy := make([]int, 0, setSize)
		for draw := 0; draw < MaxDrawsInner; draw++ {
			x := xs.lo + e.rng.Intn(xs.hi-xs.lo)
			y := ys.lo + e.rng.Intn(ys.hi-ys.lo)
			if !farEnough(cx, cy, x, y, float64(minDist)) {
				continue
			}
			cx = append(cx, x)
			cy = append(cy, y)
			if len(cx) == setSize {
				return RenderedPlacement{CenterX: cx, CenterY: cy}, nil
			}
		}
	}

	return RenderedPlacement{}, &GeometryError{
		SetSize:       setSize,
		MinCenterDist: minDist,
		Window:        e.cfg.Window,
		Border:        e.cfg.border(),
		ItemBBox:      e.cfg.ItemBBox,
		Attempts:      MaxDrawsOuter,
	}
}

// farEnough reports whether (x, y) keeps at least minDist from every accepted center.
func farEnough(cx, cy []int, x, y int, minDist float64) bool {
	for i := range cx {
		if math.Hypot(float64(cx[i]-x), float64(cy[i]-y)) < minDist {
			return false
		}
	}
	return true
}

// MinPairwiseDistance returns the smallest Euclidean distance between any two
// centers of p, or +Inf when p has fewer than two items.
func MinPairwiseDistance(p RenderedPlacement) float64 {
	min := math.Inf(1)
	for i := 0; i < p.Len(); i++ {
		for j := i + 1; j < p.Len(); j++ {
			d := math.Hypot(float64(p.CenterX[i]-p.CenterX[j]), float64(p.CenterY[i]-p.CenterY[j]))
			if d < min {
				min = d
			}
		}
	}
	return min
}
