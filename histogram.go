package metrics

import (
	"math"
	"sync/atomic"

	"github.com/ygrebnov/metrics/v2/exposition"
)

// Histogram counts observations into inclusive buckets (x <= le) and tracks their
// count and sum. All operations are lock-free.
type Histogram struct {
	thresholds *Thresholds
	// per-bucket counts; Snapshot accumulates them
	buckets []atomic.Uint64
	count   atomic.Uint64
	sum     atomic.Uint64 // float64 bits
}

// NewHistogram returns a standalone histogram over t.
func NewHistogram(t *Thresholds) *Histogram {
	h := &Histogram{}
	h.init(t, make([]atomic.Uint64, t.Len()))
	return h
}

func (h *Histogram) init(t *Thresholds, buckets []atomic.Uint64) {
	h.thresholds = t
	h.buckets = buckets
}

// Observe records x.
func (h *Histogram) Observe(x float64) {
	h.buckets[h.thresholds.bucket(x)].Add(1)
	h.count.Add(1)
	addFloat(&h.sum, x)
}

// Thresholds returns the shared bucket bounds.
func (h *Histogram) Thresholds() *Thresholds { return h.thresholds }

// Snapshot returns cumulative bucket counts, count and sum. Bucket counts are
// non-decreasing and the +Inf bucket equals the sum of all per-bucket counts even
// while observations race with the snapshot; Count and Sum are read separately.
func (h *Histogram) Snapshot() exposition.HistogramPoint {
	p := exposition.HistogramPoint{
		Thresholds: h.thresholds.bounds,
		Buckets:    make([]uint64, len(h.buckets)),
	}
	var acc uint64
	for i := range h.buckets {
		acc += h.buckets[i].Load()
		p.Buckets[i] = acc
	}
	p.Count = h.count.Load()
	p.Sum = math.Float64frombits(h.sum.Load())
	return p
}

// newHistograms allocates n histograms backed by a single bucket slice.
func newHistograms(t *Thresholds, n int) []Histogram {
	hs := make([]Histogram, n)
	m := t.Len()
	buckets := make([]atomic.Uint64, n*m)
	for i := range hs {
		hs[i].init(t, buckets[i*m:(i+1)*m:(i+1)*m])
	}
	return hs
}
