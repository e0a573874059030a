package metrics

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/ygrebnov/metrics/v2/exposition"
	"github.com/ygrebnov/metrics/v2/label"
)

// test helper: read metadata stored for a registered family.
// Placed in a _test.go file so it is test-only and not part of the public API.
func metaLoad(r *Registry, name string) (FamilyConfig, bool) {
	v, ok := r.meta.Load(name)
	if !ok {
		return FamilyConfig{}, false
	}
	cfg, ok := v.(FamilyConfig)
	return cfg, ok
}

type method uint8

const (
	methodGet method = iota
	methodPost
)

var methodNames = [...]string{"GET", "POST"}

func (method) Cardinality() int    { return len(methodNames) }
func (m method) Encode() int       { return int(m) }
func (method) Decode(i int) method { return method(i) }
func (m method) Visit(v label.Visitor) {
	v.WriteStr(methodNames[m])
}

type reqLabels struct {
	Method method
	Route  string
}

var testRoutes = []string{"/users", "/orders", "/healthz"}

func reqSet(t testing.TB, routes label.Set[string]) *label.GroupSet[reqLabels] {
	t.Helper()
	s, err := label.NewGroupSet(
		label.Dim("method", label.Enum[method]{},
			func(g reqLabels) method { return g.Method },
			func(g *reqLabels, v method) { g.Method = v }),
		label.Dim("route", routes,
			func(g reqLabels) string { return g.Route },
			func(g *reqLabels, v string) { g.Route = v }),
	)
	if err != nil {
		t.Fatalf("NewGroupSet: %v", err)
	}
	return s
}

// recordingEncoder renders every call as one line.
type recordingEncoder struct {
	lines   []string
	flushed int
	// failAfter makes the n-th sample call fail when > 0
	failAfter int
	samples   int
}

var errSink = errors.New("sink failed")

func (r *recordingEncoder) sample(line string) error {
	r.samples++
	if r.failAfter > 0 && r.samples >= r.failAfter {
		return errSink
	}
	r.lines = append(r.lines, line)
	return nil
}

func renderLabels(g label.Group) string {
	if g == nil {
		return "{}"
	}
	var pairs []string
	var w valueString
	g.VisitLabels(groupVisitorFunc(func(name string, v label.Value) {
		v.Visit(&w)
		pairs = append(pairs, name+"="+w.s)
	}))
	return "{" + strings.Join(pairs, ",") + "}"
}

type groupVisitorFunc func(name string, v label.Value)

func (f groupVisitorFunc) WriteLabel(name string, v label.Value) { f(name, v) }

type valueString struct{ s string }

func (w *valueString) WriteInt(v int64)     { w.s = fmt.Sprint(v) }
func (w *valueString) WriteFloat(v float64) { w.s = fmt.Sprint(v) }
func (w *valueString) WriteStr(v string)    { w.s = v }

func (r *recordingEncoder) WriteFamily(d exposition.FamilyDesc) error {
	r.lines = append(r.lines, fmt.Sprintf("family %s %s %q", d.Name, d.Type, d.Help))
	return nil
}

func (r *recordingEncoder) WriteCounter(name string, g label.Group, v uint64) error {
	return r.sample(fmt.Sprintf("%s%s %d", name, renderLabels(g), v))
}

func (r *recordingEncoder) WriteGauge(name string, g label.Group, v int64) error {
	return r.sample(fmt.Sprintf("%s%s %d", name, renderLabels(g), v))
}

func (r *recordingEncoder) WriteGaugeFloat(name string, g label.Group, v float64) error {
	return r.sample(fmt.Sprintf("%s%s %g", name, renderLabels(g), v))
}

func (r *recordingEncoder) WriteHistogram(name string, g label.Group, h exposition.HistogramPoint) error {
	return r.sample(fmt.Sprintf("%s%s %v count=%d sum=%g", name, renderLabels(g), h.Buckets, h.Count, h.Sum))
}

func (r *recordingEncoder) Flush() error {
	r.flushed++
	return nil
}

// recordingLogger keeps formatted messages per level.
type recordingLogger struct {
	mu    sync.Mutex
	debug []string
	warn  []string
}

func (l *recordingLogger) Debugf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = append(l.debug, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Infof(string, ...interface{}) {}

func (l *recordingLogger) Warnf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warn = append(l.warn, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Errorf(string, ...interface{}) {}

func (l *recordingLogger) warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warn...)
}
