package metrics

import (
	"github.com/ygrebnov/metrics/v2/exposition"
	"github.com/ygrebnov/metrics/v2/label"
)

// Namespace returns a group that emits g's families with ns + "_" prepended to
// their names. Namespaces compose: the outermost one comes first.
func Namespace(ns string, g Group) (Group, error) {
	if err := ValidateName(ns); err != nil {
		return nil, err
	}
	return namespacedGroup{ns: ns, g: g}, nil
}

type namespacedGroup struct {
	ns string
	g  Group
}

func (n namespacedGroup) CollectGroupInto(enc exposition.Encoder) error {
	return n.g.CollectGroupInto(namespaced(enc, n.ns))
}

// namespacedEncoder prefixes family and sample names before forwarding.
type namespacedEncoder struct {
	prefix string
	next   exposition.Encoder
}

func namespaced(enc exposition.Encoder, ns string) exposition.Encoder {
	return namespacedEncoder{prefix: ns + "_", next: enc}
}

func (e namespacedEncoder) WriteFamily(desc exposition.FamilyDesc) error {
	desc.Name = e.prefix + desc.Name
	return e.next.WriteFamily(desc)
}

func (e namespacedEncoder) WriteCounter(name string, labels label.Group, v uint64) error {
	return e.next.WriteCounter(e.prefix+name, labels, v)
}

func (e namespacedEncoder) WriteGauge(name string, labels label.Group, v int64) error {
	return e.next.WriteGauge(e.prefix+name, labels, v)
}

func (e namespacedEncoder) WriteGaugeFloat(name string, labels label.Group, v float64) error {
	return e.next.WriteGaugeFloat(e.prefix+name, labels, v)
}

func (e namespacedEncoder) WriteHistogram(name string, labels label.Group, h exposition.HistogramPoint) error {
	return e.next.WriteHistogram(e.prefix+name, labels, h)
}

func (e namespacedEncoder) Flush() error { return e.next.Flush() }
