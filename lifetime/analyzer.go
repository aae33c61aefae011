// Package lifetime computes the birth/death interval of every resource a
// compiled graph declares, in topological order. The aliasing engine uses
// these intervals to decide which resources can safely share memory.
package lifetime

import "math"

// Infinite marks a resource whose death index is unbounded: a Persistent
// resource, which must never be aliased away.
const Infinite = math.MaxInt32

// Interval is the [birth, death) topological-index range a resource is
// live across. death == Infinite means the resource outlives the graph.
type Interval struct {
	Birth int
	Death int
}

// Overlaps reports whether two intervals share any topological index.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Birth < other.Death && other.Birth < iv.Death
}

// Declaration is one resource's usage record within a single analysis
// pass: the topological position it is first produced at, the positions it
// is read at, and whether it is excluded from aliasing.
type Declaration struct {
	ID         uint64
	Persistent bool
	ProducedAt int
	ReadAt     []int
}

// Analyzer computes Interval values for a set of Declarations produced by
// one Compile pass over a topologically-sorted node list.
type Analyzer struct{}

// NewAnalyzer returns a ready-to-use Analyzer. Analyzer carries no state
// between calls; Analyze is a pure function of its input.
func NewAnalyzer() *Analyzer { return &Analyzer{} }

// Analyze computes one Interval per Declaration: birth is ProducedAt,
// death is one past the last index in ReadAt (or Infinite for a
// Persistent declaration, or ProducedAt+1 if the resource is never read,
// matching the source analyzer's "single-frame, unread" minimum interval).
func (a *Analyzer) Analyze(decls []Declaration) map[uint64]Interval {
	out := make(map[uint64]Interval, len(decls))
	for _, d := range decls {
		if d.Persistent {
			out[d.ID] = Interval{Birth: d.ProducedAt, Death: Infinite}
			continue
		}
		death := d.ProducedAt + 1
		for _, r := range d.ReadAt {
			if r+1 > death {
				death = r + 1
			}
		}
		out[d.ID] = Interval{Birth: d.ProducedAt, Death: death}
	}
	return out
}
