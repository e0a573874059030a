// Package protobuf writes metric families as varint length-delimited
// io.prometheus.client.MetricFamily messages.
package protobuf

import (
	"io"
	"math"
	"strconv"

	dto "github.com/prometheus/client_model/go"
	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/proto"

	"github.com/ygrebnov/metrics/v2/exposition"
	"github.com/ygrebnov/metrics/v2/label"
)

// ContentType is the media type of the output.
const ContentType = `application/vnd.google.protobuf; proto=io.prometheus.client.MetricFamily; encoding=delimited`

// Encoder builds one MetricFamily at a time and writes it when the next family
// starts or on Flush. Families without samples are not written.
// It is not safe for concurrent use.
type Encoder struct {
	w   io.Writer
	cur *dto.MetricFamily
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) writeCurrent() error {
	mf := e.cur
	e.cur = nil
	if mf == nil || len(mf.Metric) == 0 {
		return nil
	}
	_, err := protodelim.MarshalTo(e.w, mf)
	return err
}

func (e *Encoder) WriteFamily(desc exposition.FamilyDesc) error {
	if err := e.writeCurrent(); err != nil {
		return err
	}
	mf := &dto.MetricFamily{
		Name: proto.String(desc.Name),
		Type: metricType(desc.Type).Enum(),
	}
	if desc.Help != "" {
		mf.Help = proto.String(desc.Help)
	}
	if desc.Unit != "" {
		mf.Unit = proto.String(desc.Unit)
	}
	e.cur = mf
	return nil
}

func metricType(t exposition.Type) dto.MetricType {
	switch t {
	case exposition.TypeCounter:
		return dto.MetricType_COUNTER
	case exposition.TypeGauge:
		return dto.MetricType_GAUGE
	case exposition.TypeHistogram:
		return dto.MetricType_HISTOGRAM
	default:
		return dto.MetricType_UNTYPED
	}
}

func (e *Encoder) add(labels label.Group, m *dto.Metric) {
	if e.cur == nil {
		// samples without a family header; keep them rather than drop silently
		e.cur = &dto.MetricFamily{Type: dto.MetricType_UNTYPED.Enum()}
	}
	m.Label = labelPairs(labels)
	e.cur.Metric = append(e.cur.Metric, m)
}

func (e *Encoder) WriteCounter(_ string, labels label.Group, v uint64) error {
	e.add(labels, &dto.Metric{Counter: &dto.Counter{Value: proto.Float64(float64(v))}})
	return nil
}

func (e *Encoder) WriteGauge(_ string, labels label.Group, v int64) error {
	e.add(labels, &dto.Metric{Gauge: &dto.Gauge{Value: proto.Float64(float64(v))}})
	return nil
}

func (e *Encoder) WriteGaugeFloat(_ string, labels label.Group, v float64) error {
	e.add(labels, &dto.Metric{Gauge: &dto.Gauge{Value: proto.Float64(v)}})
	return nil
}

// WriteHistogram implements exposition.Encoder. The +Inf bucket is implied by the
// sample count and is not written.
func (e *Encoder) WriteHistogram(_ string, labels label.Group, h exposition.HistogramPoint) error {
	buckets := make([]*dto.Bucket, 0, len(h.Thresholds))
	for i, bound := range h.Thresholds {
		if math.IsInf(bound, 1) {
			continue
		}
		buckets = append(buckets, &dto.Bucket{
			UpperBound:      proto.Float64(bound),
			CumulativeCount: proto.Uint64(h.Buckets[i]),
		})
	}
	e.add(labels, &dto.Metric{Histogram: &dto.Histogram{
		SampleCount: proto.Uint64(h.Count),
		SampleSum:   proto.Float64(h.Sum),
		Bucket:      buckets,
	}})
	return nil
}

// Flush writes the pending family.
func (e *Encoder) Flush() error {
	return e.writeCurrent()
}

func labelPairs(g label.Group) []*dto.LabelPair {
	if g == nil {
		return nil
	}
	var c pairCollector
	g.VisitLabels(&c)
	return c.pairs
}

type pairCollector struct {
	pairs []*dto.LabelPair
	value string
}

func (c *pairCollector) WriteLabel(name string, value label.Value) {
	value.Visit(c)
	c.pairs = append(c.pairs, &dto.LabelPair{Name: proto.String(name), Value: proto.String(c.value)})
}

func (c *pairCollector) WriteInt(v int64)     { c.value = strconv.FormatInt(v, 10) }
func (c *pairCollector) WriteFloat(v float64) { c.value = formatFloat(v) }
func (c *pairCollector) WriteStr(v string)    { c.value = v }

func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

var _ exposition.Encoder = (*Encoder)(nil)
