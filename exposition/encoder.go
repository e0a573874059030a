// Package exposition defines the interface metric families use to render their samples.
//
// Implementations live in sub-packages: text (Prometheus text format), protobuf
// (length-delimited MetricFamily messages) and promcollector (client_golang interop).
package exposition

import (
	"github.com/ygrebnov/metrics/v2/label"
)

// Type is the type of a metric family.
type Type uint8

const (
	TypeCounter Type = iota
	TypeGauge
	TypeHistogram
)

func (t Type) String() string {
	switch t {
	case TypeCounter:
		return "counter"
	case TypeGauge:
		return "gauge"
	case TypeHistogram:
		return "histogram"
	default:
		return "untyped"
	}
}

// FamilyDesc describes a metric family. Name is fully qualified.
type FamilyDesc struct {
	Name string
	Help string
	Unit string
	Type Type
}

// HistogramPoint is a snapshot of one histogram series.
//
// Thresholds are the bucket upper bounds in increasing order; the last one is +Inf.
// Buckets are cumulative and have the same length as Thresholds.
type HistogramPoint struct {
	Thresholds []float64
	Buckets    []uint64
	Count      uint64
	Sum        float64
}

// Encoder receives metric families and their samples.
//
// A family is announced with WriteFamily and followed by its samples. name is the
// family name for every sample; encoders derive suffixed series names themselves.
// Errors returned by the underlying sink are propagated unchanged; callers decide whether
// to retry from scratch.
type Encoder interface {
	WriteFamily(desc FamilyDesc) error
	WriteCounter(name string, labels label.Group, v uint64) error
	WriteGauge(name string, labels label.Group, v int64) error
	WriteGaugeFloat(name string, labels label.Group, v float64) error
	WriteHistogram(name string, labels label.Group, h HistogramPoint) error
	// Flush writes out any buffered output.
	Flush() error
}

// Discard is an Encoder that drops everything.
var Discard Encoder = discard{}

type discard struct{}

func (discard) WriteFamily(FamilyDesc) error                             { return nil }
func (discard) WriteCounter(string, label.Group, uint64) error           { return nil }
func (discard) WriteGauge(string, label.Group, int64) error              { return nil }
func (discard) WriteGaugeFloat(string, label.Group, float64) error       { return nil }
func (discard) WriteHistogram(string, label.Group, HistogramPoint) error { return nil }
func (discard) Flush() error                                             { return nil }
