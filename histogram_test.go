package metrics

import (
	"math"
	"sync/atomic"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogram_Observe(t *testing.T) {
	h := NewHistogram(MustExponentialBuckets(0.1, 2, 8))
	for _, x := range []float64{0.02, 0.12, 0.7, 5.0, 10.0} {
		h.Observe(x)
	}

	p := h.Snapshot()
	// 0.7 <= 0.8, so it is counted from the 0.8 bucket onwards
	assert.Equal(t, []uint64{1, 2, 2, 3, 3, 3, 4, 5}, p.Buckets)
	assert.Equal(t, uint64(5), p.Count)
	assert.Equal(t, 15.84, p.Sum)
	assert.Equal(t, h.Thresholds().Bounds(), p.Thresholds)
}

func TestHistogram_BoundaryAndNaN(t *testing.T) {
	h := NewHistogram(MustThresholds(1, 2))
	h.Observe(1)
	h.Observe(2)
	h.Observe(math.NaN())

	p := h.Snapshot()
	assert.Equal(t, []uint64{1, 2, 3}, p.Buckets)
	assert.Equal(t, uint64(3), p.Count)
	assert.True(t, math.IsNaN(p.Sum))
}

func TestHistogram_SnapshotsAreMonotonicUnderLoad(t *testing.T) {
	h := NewHistogram(MustExponentialBuckets(0.001, 2, 16))
	var stop atomic.Bool

	var wg conc.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Go(func() {
			x := float64(w) * 0.01
			for !stop.Load() {
				h.Observe(x)
				x += 0.003
				if x > 100 {
					x = 0
				}
			}
		})
	}

	for i := 0; i < 200; i++ {
		p := h.Snapshot()
		for j := 1; j < len(p.Buckets); j++ {
			require.LessOrEqual(t, p.Buckets[j-1], p.Buckets[j])
		}
	}
	stop.Store(true)
	wg.Wait()

	p := h.Snapshot()
	assert.Equal(t, p.Count, p.Buckets[len(p.Buckets)-1])
}

func TestNewHistograms_SharedThresholds(t *testing.T) {
	th := MustThresholds(1)
	hs := newHistograms(th, 3)
	hs[0].Observe(0.5)
	hs[2].Observe(5)

	assert.Same(t, th, hs[1].Thresholds())
	assert.Equal(t, []uint64{1, 1}, hs[0].Snapshot().Buckets)
	assert.Equal(t, []uint64{0, 0}, hs[1].Snapshot().Buckets)
	assert.Equal(t, []uint64{0, 1}, hs[2].Snapshot().Buckets)
}
