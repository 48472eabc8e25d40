package placement

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/combin"
)

// CellCombination is a set of distinct cell indices in canonical (sorted) order.
type CellCombination []int

// Key returns a comparable form of the combination.
func (c CellCombination) Key() string {
	var sb strings.Builder
	for i, cell := range c {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(cell))
	}
	return sb.String()
}

// saturated stands in for binomial coefficients that do not fit in an int.
const saturated = math.MaxInt

// CountCombinations returns C(n, k), or math.MaxInt when the coefficient
// (or the intermediate products gonum computes it with) would overflow.
func CountCombinations(n, k int) int {
	if k < 0 || n < k {
		return 0
	}
	if k == 0 || k == n {
		return 1
	}
	logC := combin.LogGeneralizedBinomial(float64(n), float64(k))
	if logC+math.Log(float64(n)) >= math.Log(float64(math.MaxInt))-1 {
		return saturated
	}
	return combin.Binomial(n, k)
}

// randomCombination draws k distinct cells from [0, n) and sorts them.
func randomCombination(rng *rand.Rand, n, k int) CellCombination {
	cells := rng.Perm(n)[:k]
	sort.Ints(cells)
	return CellCombination(cells)
}

// sampleIndices draws m distinct integers from [0, n) in random order (Floyd's algorithm).
func sampleIndices(rng *rand.Rand, n, m int) []int {
	chosen := make(map[int]struct{}, m)
	out := make([]int, 0, m)
	for j := n - m; j < n; j++ {
		t := int(rng.Int63n(int64(j) + 1))
		if _, ok := chosen[t]; ok {
			t = j
		}
		chosen[t] = struct{}{}
		out = append(out, t)
	}
	rng.Shuffle(len(out), func(a, b int) { out[a], out[b] = out[b], out[a] })
	return out
}

// distinctCombinations draws m distinct k-cell combinations out of n cells.
// The caller guarantees m <= CountCombinations(n, k).
func distinctCombinations(rng *rand.Rand, n, k, m int) []CellCombination {
	total := CountCombinations(n, k)
	out := make([]CellCombination, 0, m)

	if total == saturated {
		// Too many combinations to index; collisions are rare enough to reject.
		seen := make(map[string]struct{}, m)
		for len(out) < m {
			c := randomCombination(rng, n, k)
			if _, dup := seen[c.Key()]; dup {
				continue
			}
			seen[c.Key()] = struct{}{}
			out = append(out, c)
		}
		return out
	}

	for _, idx := range sampleIndices(rng, total, m) {
		out = append(out, CellCombination(combin.IndexToCombination(nil, idx, n, k)))
	}
	return out
}

// Capacity returns the number of distinct (cells, jitter vector) displays a
// unique plan can draw from: C(n, k) combinations times (j+1)^2 jitter pairs,
// saturating at math.MaxInt.
func Capacity(n, k, j int) int {
	if j < 0 {
		return 0
	}
	return saturatingMul(CountCombinations(n, k), saturatingMul(j+1, j+1))
}

// saturatingMul returns a*b for non-negative a and b, or math.MaxInt on overflow.
func saturatingMul(a, b int) int {
	if a == saturated || b == saturated || (b > 0 && a > saturated/b) {
		return saturated
	}
	return a * b
}
