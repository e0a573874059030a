package metrics

import (
	"fmt"
	"slices"

	"github.com/ygrebnov/metrics/v2/exposition"
	"github.com/ygrebnov/metrics/v2/label"
)

var counterKind = &stateKind[Counter]{
	typ:  exposition.TypeCounter,
	many: func(n int) []Counter { return make([]Counter, n) },
	one:  func() *Counter { return new(Counter) },
	write: func(enc exposition.Encoder, name string, labels label.Group, s *Counter) error {
		return enc.WriteCounter(name, labels, s.Get())
	},
}

var gaugeKind = &stateKind[Gauge]{
	typ:  exposition.TypeGauge,
	many: func(n int) []Gauge { return make([]Gauge, n) },
	one:  func() *Gauge { return new(Gauge) },
	write: func(enc exposition.Encoder, name string, labels label.Group, s *Gauge) error {
		return enc.WriteGauge(name, labels, s.Get())
	},
}

var floatGaugeKind = &stateKind[FloatGauge]{
	typ:  exposition.TypeGauge,
	many: func(n int) []FloatGauge { return make([]FloatGauge, n) },
	one:  func() *FloatGauge { return new(FloatGauge) },
	write: func(enc exposition.Encoder, name string, labels label.Group, s *FloatGauge) error {
		return enc.WriteGaugeFloat(name, labels, s.Get())
	},
}

func histogramKind(t *Thresholds) *stateKind[Histogram] {
	return &stateKind[Histogram]{
		typ:  exposition.TypeHistogram,
		many: func(n int) []Histogram { return newHistograms(t, n) },
		one:  func() *Histogram { return NewHistogram(t) },
		write: func(enc exposition.Encoder, name string, labels label.Group, s *Histogram) error {
			return enc.WriteHistogram(name, labels, s.Snapshot())
		},
	}
}

// CounterVec is a family of counters.
type CounterVec[G any] struct {
	*Vec[G, Counter]
}

// NewCounterVec returns a counter family keyed by set.
func NewCounterVec[G any](set *label.GroupSet[G], opts ...Option) (*CounterVec[G], error) {
	v, err := newVec(set, counterKind, opts)
	if err != nil {
		return nil, err
	}
	return &CounterVec[G]{v}, nil
}

// Inc increments the counter for g.
// It panics when g holds a fixed label value its set does not know; use Get to
// handle that case.
func (v *CounterVec[G]) Inc(g G) { v.With(g).Inc() }

// IncBy adds n to the counter for g. It panics like Inc.
func (v *CounterVec[G]) IncBy(g G, n uint64) { v.With(g).IncBy(n) }

// GaugeVec is a family of integer gauges.
type GaugeVec[G any] struct {
	*Vec[G, Gauge]
}

// NewGaugeVec returns a gauge family keyed by set.
func NewGaugeVec[G any](set *label.GroupSet[G], opts ...Option) (*GaugeVec[G], error) {
	v, err := newVec(set, gaugeKind, opts)
	if err != nil {
		return nil, err
	}
	return &GaugeVec[G]{v}, nil
}

// Inc increments the gauge for g.
// It panics when g holds a fixed label value its set does not know; use Get to
// handle that case.
func (v *GaugeVec[G]) Inc(g G) { v.With(g).Inc() }

// Dec decrements the gauge for g. It panics like Inc.
func (v *GaugeVec[G]) Dec(g G) { v.With(g).Dec() }

// Set stores val in the gauge for g. It panics like Inc.
func (v *GaugeVec[G]) Set(g G, val int64) { v.With(g).Set(val) }

// FloatGaugeVec is a family of float gauges.
type FloatGaugeVec[G any] struct {
	*Vec[G, FloatGauge]
}

// NewFloatGaugeVec returns a float gauge family keyed by set.
func NewFloatGaugeVec[G any](set *label.GroupSet[G], opts ...Option) (*FloatGaugeVec[G], error) {
	v, err := newVec(set, floatGaugeKind, opts)
	if err != nil {
		return nil, err
	}
	return &FloatGaugeVec[G]{v}, nil
}

// Set stores val in the gauge for g.
// It panics when g holds a fixed label value its set does not know; use Get to
// handle that case.
func (v *FloatGaugeVec[G]) Set(g G, val float64) { v.With(g).Set(val) }

// Add adds delta to the gauge for g. It panics like Set.
func (v *FloatGaugeVec[G]) Add(g G, delta float64) { v.With(g).Add(delta) }

// HistogramVec is a family of histograms sharing one set of thresholds.
type HistogramVec[G any] struct {
	*Vec[G, Histogram]
	thresholds *Thresholds
}

// NewHistogramVec returns a histogram family keyed by set. The label set must not
// use "le", which is reserved for bucket bounds.
func NewHistogramVec[G any](set *label.GroupSet[G], t *Thresholds, opts ...Option) (*HistogramVec[G], error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil thresholds", ErrInvalidBuckets)
	}
	if slices.Contains(set.Names(), "le") {
		return nil, fmt.Errorf("%w: %q is used for bucket bounds", ErrReservedLabel, "le")
	}
	o := applyOptions(opts)
	if _, ok := o.ConstLabels["le"]; ok {
		return nil, fmt.Errorf("%w: %q is used for bucket bounds", ErrReservedLabel, "le")
	}
	v, err := newVec(set, histogramKind(t), opts)
	if err != nil {
		return nil, err
	}
	return &HistogramVec[G]{Vec: v, thresholds: t}, nil
}

// Observe records x in the histogram for g.
// It panics when g holds a fixed label value its set does not know; use Get to
// handle that case.
func (v *HistogramVec[G]) Observe(g G, x float64) { v.With(g).Observe(x) }

// Thresholds returns the bucket bounds shared by every histogram of the family.
func (v *HistogramVec[G]) Thresholds() *Thresholds { return v.thresholds }
