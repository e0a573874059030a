package metrics

import (
	"math"
	"sync/atomic"
)

// Counter is a thread-safe monotonic counter.
type Counter struct {
	val atomic.Uint64
}

// Inc increments the counter by one.
func (c *Counter) Inc() { c.val.Add(1) }

// IncBy increments the counter by n.
func (c *Counter) IncBy(n uint64) { c.val.Add(n) }

// Get returns the current value.
func (c *Counter) Get() uint64 { return c.val.Load() }

// Gauge is a thread-safe integer gauge.
type Gauge struct {
	val atomic.Int64
}

func (g *Gauge) Inc()          { g.val.Add(1) }
func (g *Gauge) IncBy(n int64) { g.val.Add(n) }
func (g *Gauge) Dec()          { g.val.Add(-1) }
func (g *Gauge) DecBy(n int64) { g.val.Add(-n) }
func (g *Gauge) Set(v int64)   { g.val.Store(v) }
func (g *Gauge) Get() int64    { return g.val.Load() }

// FloatGauge is a thread-safe float64 gauge.
type FloatGauge struct {
	bits atomic.Uint64
}

// Set replaces the current value.
func (g *FloatGauge) Set(v float64) { g.bits.Store(math.Float64bits(v)) }

// Add adds delta (positive or negative) to the current value.
func (g *FloatGauge) Add(delta float64) { addFloat(&g.bits, delta) }

// Get returns the current value.
func (g *FloatGauge) Get() float64 { return math.Float64frombits(g.bits.Load()) }

// addFloat adds delta to the float64 stored as bits in a.
func addFloat(a *atomic.Uint64, delta float64) {
	for {
		old := a.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if a.CompareAndSwap(old, next) {
			return
		}
	}
}
