package placement

import (
	"fmt"
	"math/rand"
)

// Offset is a jitter displacement applied to an item center.
// Order matters: {DY: 1, DX: 0} and {DY: 0, DX: 1} are different offsets.
type Offset struct {
	DY int `json:"dy"`
	DX int `json:"dx"`
}

// JitterRange is the inclusive integer range [Lo, Hi] offsets are drawn from.
type JitterRange struct {
	Lo int
	Hi int
}

// NewJitterRange returns the range of exactly j+1 consecutive integers centered on zero.
//
// Parameters:
//   - j: jitter magnitude in pixels. Must be non-negative; 0 means no jitter.
//   - coin: fair coin. Only consulted for odd j, where j+1 values cannot be symmetric
//     around zero: heads puts the extra value on the high side, tails on the low side.
//
// Even j gives the symmetric range [-j/2, j/2].
func NewJitterRange(j int, coin func() bool) (JitterRange, error) {
	if j < 0 {
		return JitterRange{}, fmt.Errorf("%w: jitter must be a non-negative integer, got %d", ErrInvalidConfig, j)
	}
	half := j / 2
	r := JitterRange{Lo: -half, Hi: half}
	if j%2 == 1 {
		if coin() {
			r.Hi++
		} else {
			r.Lo--
		}
	}
	return r, nil
}

// Len returns the number of values in the range.
func (r JitterRange) Len() int {
	return r.Hi - r.Lo + 1
}

// Values lists the range in ascending order.
func (r JitterRange) Values() []int {
	vals := make([]int, 0, r.Len())
	for v := r.Lo; v <= r.Hi; v++ {
		vals = append(vals, v)
	}
	return vals
}

// Draw returns one value uniformly from the range.
func (r JitterRange) Draw(rng *rand.Rand) int {
	return r.Lo + rng.Intn(r.Len())
}

// DrawOffset draws DY and DX independently, with replacement.
func (r JitterRange) DrawOffset(rng *rand.Rand) Offset {
	return Offset{DY: r.Draw(rng), DX: r.Draw(rng)}
}

// Pairs returns the Cartesian product of the range with itself, DY-major.
// A zero-jitter range yields the single pair {0, 0}.
func (r JitterRange) Pairs() []Offset {
	vals := r.Values()
	pairs := make([]Offset, 0, len(vals)*len(vals))
	for _, dy := range vals {
		for _, dx := range vals {
			pairs = append(pairs, Offset{DY: dy, DX: dx})
		}
	}
	return pairs
}
