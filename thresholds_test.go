package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBuckets(t *testing.T) {
	th, err := ExponentialBuckets(0.1, 2, 8)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, math.Inf(1)}, th.Bounds())
	assert.Equal(t, 8, th.Len())

	one := MustExponentialBuckets(1, 2, 1)
	assert.Equal(t, []float64{math.Inf(1)}, one.Bounds())
}

func TestLinearBuckets(t *testing.T) {
	th, err := LinearBuckets(0, 5, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 5, 10, math.Inf(1)}, th.Bounds())
}

func TestBuckets_Errors(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (*Thresholds, error)
	}{
		{"exp n zero", func() (*Thresholds, error) { return ExponentialBuckets(1, 2, 0) }},
		{"exp start zero", func() (*Thresholds, error) { return ExponentialBuckets(0, 2, 3) }},
		{"exp start negative", func() (*Thresholds, error) { return ExponentialBuckets(-1, 2, 3) }},
		{"exp factor one", func() (*Thresholds, error) { return ExponentialBuckets(1, 1, 3) }},
		{"exp factor NaN", func() (*Thresholds, error) { return ExponentialBuckets(1, math.NaN(), 3) }},
		{"linear width zero", func() (*Thresholds, error) { return LinearBuckets(0, 0, 3) }},
		{"linear start inf", func() (*Thresholds, error) { return LinearBuckets(math.Inf(-1), 1, 3) }},
		{"not increasing", func() (*Thresholds, error) { return NewThresholds(1, 1) }},
		{"decreasing", func() (*Thresholds, error) { return NewThresholds(2, 1) }},
		{"NaN", func() (*Thresholds, error) { return NewThresholds(1, math.NaN()) }},
		{"-Inf", func() (*Thresholds, error) { return NewThresholds(math.Inf(-1), 1) }},
		{"+Inf not last", func() (*Thresholds, error) { return NewThresholds(math.Inf(1), 1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, err := tt.fn()
			require.ErrorIs(t, err, ErrInvalidBuckets)
			assert.Nil(t, th)
		})
	}

	assert.Panics(t, func() { MustThresholds(3, 2) })
	assert.Panics(t, func() { MustLinearBuckets(0, -1, 2) })
}

func TestNewThresholds(t *testing.T) {
	th := MustThresholds(1, 2)
	assert.Equal(t, []float64{1, 2, math.Inf(1)}, th.Bounds())

	th = MustThresholds(1, 2, math.Inf(1))
	assert.Equal(t, []float64{1, 2, math.Inf(1)}, th.Bounds())

	th = MustThresholds()
	assert.Equal(t, []float64{math.Inf(1)}, th.Bounds())

	// Bounds is a copy
	b := th.Bounds()
	b[0] = 1
	assert.True(t, math.IsInf(th.Bounds()[0], 1))
}

func TestThresholds_BucketIsInclusive(t *testing.T) {
	small := MustThresholds(1, 2, 4)
	large := MustLinearBuckets(1, 1, 20) // 1..19, +Inf

	for _, th := range []*Thresholds{small, large} {
		assert.Equal(t, 0, th.bucket(0.5))
		assert.Equal(t, 0, th.bucket(1), "a value equal to a bound belongs to that bucket")
		assert.Equal(t, 1, th.bucket(1.0000001))
		assert.Equal(t, 1, th.bucket(2))
		assert.Equal(t, 0, th.bucket(math.Inf(-1)))
		assert.Equal(t, th.Len()-1, th.bucket(math.Inf(1)))
		assert.Equal(t, th.Len()-1, th.bucket(math.NaN()))
		assert.Equal(t, th.Len()-1, th.bucket(1e9))
	}
}
