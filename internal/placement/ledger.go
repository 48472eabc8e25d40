package placement

import (
	"strconv"
	"strings"
)

// Assignment is the planned geometry of one grid image: which cells hold items and
// the jitter applied to each item, in the same order as Cells.
type Assignment struct {
	Cells  CellCombination `json:"cells"`
	Jitter []Offset        `json:"jitter"`
}

// Key returns a comparable form of the assignment's cells and jitter vector.
func (a Assignment) Key() string {
	var sb strings.Builder
	sb.WriteString(a.Cells.Key())
	sb.WriteByte('|')
	for i, o := range a.Jitter {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(strconv.Itoa(o.DY))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(o.DX))
	}
	return sb.String()
}

// Ledger remembers every assignment emitted for one (stimulus, set size, condition)
// group. It only grows; drop it when the group is done.
type Ledger struct {
	seen map[string]struct{}
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{seen: make(map[string]struct{})}
}

// Add records a and reports whether it was new.
func (l *Ledger) Add(a Assignment) bool {
	k := a.Key()
	if _, ok := l.seen[k]; ok {
		return false
	}
	l.seen[k] = struct{}{}
	return true
}

// Contains reports whether a has been recorded.
func (l *Ledger) Contains(a Assignment) bool {
	_, ok := l.seen[a.Key()]
	return ok
}

// Len returns the number of distinct assignments recorded.
func (l *Ledger) Len() int {
	return len(l.seen)
}
