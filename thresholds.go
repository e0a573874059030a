package metrics

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Thresholds is an immutable, strictly increasing list of histogram bucket upper
// bounds. The last bound is always +Inf. Histograms of one family share a single
// Thresholds value.
type Thresholds struct {
	bounds []float64
}

// NewThresholds validates bounds and appends +Inf when it is missing.
// Bounds must be strictly increasing and must not contain NaN or -Inf.
func NewThresholds(bounds ...float64) (*Thresholds, error) {
	out := make([]float64, 0, len(bounds)+1)
	for i, b := range bounds {
		switch {
		case math.IsNaN(b):
			return nil, fmt.Errorf("%w: NaN at position %d", ErrInvalidBuckets, i)
		case math.IsInf(b, -1):
			return nil, fmt.Errorf("%w: -Inf at position %d", ErrInvalidBuckets, i)
		case math.IsInf(b, 1) && i != len(bounds)-1:
			return nil, fmt.Errorf("%w: +Inf must be the last bound", ErrInvalidBuckets)
		case i > 0 && b <= bounds[i-1]:
			return nil, fmt.Errorf("%w: %g after %g is not increasing", ErrInvalidBuckets, b, bounds[i-1])
		}
		out = append(out, b)
	}
	if len(out) == 0 || !math.IsInf(out[len(out)-1], 1) {
		out = append(out, math.Inf(1))
	}
	return &Thresholds{bounds: out}, nil
}

// MustThresholds is like NewThresholds but panics on error.
func MustThresholds(bounds ...float64) *Thresholds {
	t, err := NewThresholds(bounds...)
	if err != nil {
		panic(err)
	}
	return t
}

// ExponentialBuckets returns n thresholds: n-1 finite bounds start, start*factor,
// start*factor^2, ... followed by +Inf.
func ExponentialBuckets(start, factor float64, n int) (*Thresholds, error) {
	switch {
	case n < 1:
		return nil, fmt.Errorf("%w: n=%d, want at least 1", ErrInvalidBuckets, n)
	case !(start > 0) || math.IsInf(start, 1):
		return nil, fmt.Errorf("%w: start=%g, want a positive finite value", ErrInvalidBuckets, start)
	case !(factor > 1) || math.IsInf(factor, 1):
		return nil, fmt.Errorf("%w: factor=%g, want a finite value above 1", ErrInvalidBuckets, factor)
	}
	bounds := make([]float64, n)
	v := start
	for i := 0; i < n-1; i++ {
		bounds[i] = v
		v *= factor
	}
	bounds[n-1] = math.Inf(1)
	return NewThresholds(bounds...)
}

// MustExponentialBuckets is like ExponentialBuckets but panics on error.
func MustExponentialBuckets(start, factor float64, n int) *Thresholds {
	t, err := ExponentialBuckets(start, factor, n)
	if err != nil {
		panic(err)
	}
	return t
}

// LinearBuckets returns n thresholds: n-1 finite bounds start, start+width, ...
// followed by +Inf.
func LinearBuckets(start, width float64, n int) (*Thresholds, error) {
	switch {
	case n < 1:
		return nil, fmt.Errorf("%w: n=%d, want at least 1", ErrInvalidBuckets, n)
	case math.IsNaN(start) || math.IsInf(start, 0):
		return nil, fmt.Errorf("%w: start=%g, want a finite value", ErrInvalidBuckets, start)
	case !(width > 0) || math.IsInf(width, 1):
		return nil, fmt.Errorf("%w: width=%g, want a positive finite value", ErrInvalidBuckets, width)
	}
	bounds := make([]float64, n)
	for i := 0; i < n-1; i++ {
		bounds[i] = start + float64(i)*width
	}
	bounds[n-1] = math.Inf(1)
	return NewThresholds(bounds...)
}

// MustLinearBuckets is like LinearBuckets but panics on error.
func MustLinearBuckets(start, width float64, n int) *Thresholds {
	t, err := LinearBuckets(start, width, n)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of buckets including +Inf.
func (t *Thresholds) Len() int { return len(t.bounds) }

// Bounds returns a copy of the bucket upper bounds.
func (t *Thresholds) Bounds() []float64 { return slices.Clone(t.bounds) }

// bucket returns the index of the first bound b with x <= b. NaN lands in +Inf.
func (t *Thresholds) bucket(x float64) int {
	b := t.bounds
	if len(b) <= 8 {
		for i, v := range b {
			if x <= v {
				return i
			}
		}
		return len(b) - 1
	}
	i := sort.SearchFloat64s(b, x)
	if i >= len(b) {
		return len(b) - 1
	}
	return i
}
