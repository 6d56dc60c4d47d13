package belief

import "fmt"

// Range is a closed interval of integers. Belief ranges only ever narrow:
// every operation intersects with the current bounds and can never widen.
type Range struct {
	Min int
	Max int
}

// NewRange returns the interval [min, max].
func NewRange(min, max int) Range {
	return Range{Min: min, Max: max}
}

// Narrow intersects the range with [min, max] and reports whether the
// intersection was empty. An empty intersection is clamped (min := max)
// rather than panicking: contradictory rule data produces a degenerate
// point range and a counted contradiction, not a crash.
func (r Range) Narrow(min, max int) (Range, bool) {
	out := r
	if min > out.Min {
		out.Min = min
	}
	if max < out.Max {
		out.Max = max
	}
	if out.Min > out.Max {
		out.Min = out.Max
		return out, true
	}
	return out, false
}

// NarrowMin raises the lower bound.
func (r Range) NarrowMin(min int) (Range, bool) {
	return r.Narrow(min, r.Max)
}

// NarrowMax lowers the upper bound.
func (r Range) NarrowMax(max int) (Range, bool) {
	return r.Narrow(r.Min, max)
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Within reports whether r is a subinterval of outer.
func (r Range) Within(outer Range) bool {
	return r.Min >= outer.Min && r.Max <= outer.Max
}

// Exact reports whether the range has collapsed to a single value.
func (r Range) Exact() bool {
	return r.Min == r.Max
}

func (r Range) String() string {
	if r.Exact() {
		return fmt.Sprintf("%d", r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}
