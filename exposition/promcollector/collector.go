// Package promcollector exposes a metrics.Group as a prometheus.Collector so
// families can be served by a client_golang registry next to its own collectors.
package promcollector

import (
	"math"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	metrics "github.com/ygrebnov/metrics/v2"
	"github.com/ygrebnov/metrics/v2/exposition"
	"github.com/ygrebnov/metrics/v2/label"
)

// Collector is an unchecked prometheus.Collector: Describe sends nothing and
// descriptors are built while collecting.
type Collector struct {
	group metrics.Group
}

// New returns a Collector over g.
func New(g metrics.Group) *Collector {
	return &Collector{group: g}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(chan<- *prometheus.Desc) {}

// Collect implements prometheus.Collector. An error aborts collection and is
// reported to the registry as an invalid metric.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	enc := &encoder{ch: ch, descs: make(map[string]*prometheus.Desc)}
	if err := c.group.CollectGroupInto(enc); err != nil {
		ch <- prometheus.NewInvalidMetric(prometheus.NewInvalidDesc(err), err)
	}
}

// encoder turns samples into const metrics.
type encoder struct {
	ch    chan<- prometheus.Metric
	help  string
	descs map[string]*prometheus.Desc
	pairs labelPairs
}

func (e *encoder) WriteFamily(desc exposition.FamilyDesc) error {
	e.help = desc.Help
	return nil
}

func (e *encoder) desc(name string, labels label.Group) *prometheus.Desc {
	e.pairs.reset()
	if labels != nil {
		labels.VisitLabels(&e.pairs)
	}
	key := name + "\xff" + strings.Join(e.pairs.names, "\xff")
	d, ok := e.descs[key]
	if !ok {
		d = prometheus.NewDesc(name, e.help, append([]string(nil), e.pairs.names...), nil)
		e.descs[key] = d
	}
	return d
}

func (e *encoder) send(m prometheus.Metric, err error) error {
	if err != nil {
		return err
	}
	e.ch <- m
	return nil
}

func (e *encoder) WriteCounter(name string, labels label.Group, v uint64) error {
	d := e.desc(name, labels)
	return e.send(prometheus.NewConstMetric(d, prometheus.CounterValue, float64(v), e.pairs.values...))
}

func (e *encoder) WriteGauge(name string, labels label.Group, v int64) error {
	d := e.desc(name, labels)
	return e.send(prometheus.NewConstMetric(d, prometheus.GaugeValue, float64(v), e.pairs.values...))
}

func (e *encoder) WriteGaugeFloat(name string, labels label.Group, v float64) error {
	d := e.desc(name, labels)
	return e.send(prometheus.NewConstMetric(d, prometheus.GaugeValue, v, e.pairs.values...))
}

func (e *encoder) WriteHistogram(name string, labels label.Group, h exposition.HistogramPoint) error {
	d := e.desc(name, labels)
	buckets := make(map[float64]uint64, len(h.Thresholds))
	for i, bound := range h.Thresholds {
		if !math.IsInf(bound, 1) {
			buckets[bound] = h.Buckets[i]
		}
	}
	return e.send(prometheus.NewConstHistogram(d, h.Count, h.Sum, buckets, e.pairs.values...))
}

func (e *encoder) Flush() error { return nil }

type labelPairs struct {
	names  []string
	values []string
	value  string
}

func (p *labelPairs) reset() {
	p.names = p.names[:0]
	p.values = p.values[:0]
}

func (p *labelPairs) WriteLabel(name string, value label.Value) {
	value.Visit(p)
	p.names = append(p.names, name)
	p.values = append(p.values, p.value)
}

func (p *labelPairs) WriteInt(v int64)     { p.value = strconv.FormatInt(v, 10) }
func (p *labelPairs) WriteFloat(v float64) { p.value = strconv.FormatFloat(v, 'g', -1, 64) }
func (p *labelPairs) WriteStr(v string)    { p.value = v }

var _ prometheus.Collector = (*Collector)(nil)
