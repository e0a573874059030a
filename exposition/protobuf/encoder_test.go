package protobuf

import (
	"bytes"
	"errors"
	"io"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protodelim"

	metrics "github.com/ygrebnov/metrics/v2"
	"github.com/ygrebnov/metrics/v2/label"
)

type routeLabels struct {
	Route string
}

var codes = label.MustIndexSet("200", "500")

func routeSet() *label.GroupSet[routeLabels] {
	return label.MustGroupSet(
		label.Dim("route", label.NewInternSet(),
			func(g routeLabels) string { return g.Route },
			func(g *routeLabels, v string) { g.Route = v }),
	)
}

func readFamilies(t *testing.T, b []byte) []*dto.MetricFamily {
	t.Helper()
	r := bytes.NewReader(b)
	var out []*dto.MetricFamily
	for {
		mf := &dto.MetricFamily{}
		err := protodelim.UnmarshalFrom(r, mf)
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, mf)
	}
}

func TestEncoder_Families(t *testing.T) {
	r := metrics.NewRegistry(metrics.WithNamespace("api"))
	reqs, err := metrics.RegisterCounterVec(r, "requests_total", routeSet(),
		metrics.WithHelp("Requests."), metrics.WithUnit("requests"))
	require.NoError(t, err)
	reqs.IncBy(routeLabels{Route: "/users"}, 3)
	reqs.Inc(routeLabels{Route: "/orders"})

	// sparse and untouched: not written
	_, err = metrics.RegisterGaugeVec(r, "idle", routeSet())
	require.NoError(t, err)

	lat, err := metrics.RegisterHistogramVec(r, "latency_seconds", label.Empty(), metrics.MustThresholds(0.1, 1))
	require.NoError(t, err)
	lat.Observe(label.NoLabels{}, 0.05)
	lat.Observe(label.NoLabels{}, 2)

	temp, err := metrics.RegisterFloatGaugeVec(r, "temperature", label.Empty())
	require.NoError(t, err)
	temp.Set(label.NoLabels{}, -1.5)

	var buf bytes.Buffer
	require.NoError(t, metrics.Collect(NewEncoder(&buf), r))

	families := readFamilies(t, buf.Bytes())
	require.Len(t, families, 3)

	c := families[0]
	assert.Equal(t, "api_requests_total", c.GetName())
	assert.Equal(t, "Requests.", c.GetHelp())
	assert.Equal(t, "requests", c.GetUnit())
	assert.Equal(t, dto.MetricType_COUNTER, c.GetType())
	require.Len(t, c.GetMetric(), 2)
	m := c.GetMetric()[0]
	require.Len(t, m.GetLabel(), 1)
	assert.Equal(t, "route", m.GetLabel()[0].GetName())
	assert.Equal(t, "/users", m.GetLabel()[0].GetValue())
	assert.Equal(t, 3.0, m.GetCounter().GetValue())

	h := families[1]
	assert.Equal(t, "api_latency_seconds", h.GetName())
	assert.Equal(t, dto.MetricType_HISTOGRAM, h.GetType())
	assert.False(t, h.Help != nil, "empty help is not set")
	hist := h.GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(2), hist.GetSampleCount())
	assert.Equal(t, 2.05, hist.GetSampleSum())
	require.Len(t, hist.GetBucket(), 2, "+Inf bucket is excluded")
	assert.Equal(t, 0.1, hist.GetBucket()[0].GetUpperBound())
	assert.Equal(t, uint64(1), hist.GetBucket()[0].GetCumulativeCount())
	assert.Equal(t, uint64(1), hist.GetBucket()[1].GetCumulativeCount())
	assert.Empty(t, h.GetMetric()[0].GetLabel())

	g := families[2]
	assert.Equal(t, dto.MetricType_GAUGE, g.GetType())
	assert.Equal(t, -1.5, g.GetMetric()[0].GetGauge().GetValue())
}

type labelsFunc func(v label.GroupVisitor)

func (f labelsFunc) VisitLabels(v label.GroupVisitor) { f(v) }

func TestEncoder_LabelValueKinds(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.WriteGauge("x", labelsFunc(func(v label.GroupVisitor) {
		v.WriteLabel("code", label.Int(503))
		v.WriteLabel("ratio", label.Float(0.5))
		v.WriteLabel("code_class", label.String(codes.Decode(1)))
	}), 1))
	require.NoError(t, enc.Flush())

	families := readFamilies(t, buf.Bytes())
	require.Len(t, families, 1)
	lbls := families[0].GetMetric()[0].GetLabel()
	require.Len(t, lbls, 3)
	assert.Equal(t, "503", lbls[0].GetValue())
	assert.Equal(t, "0.5", lbls[1].GetValue())
	assert.Equal(t, "500", lbls[2].GetValue())
	assert.Equal(t, dto.MetricType_UNTYPED, families[0].GetType())
}

type failingWriter struct{}

var errClosed = errors.New("closed")

func (failingWriter) Write([]byte) (int, error) { return 0, errClosed }

func TestEncoder_WriteError(t *testing.T) {
	r := metrics.NewRegistry()
	a, err := metrics.RegisterCounterVec(r, "a_total", label.Empty())
	require.NoError(t, err)
	a.Inc(label.NoLabels{})
	_, err = metrics.RegisterCounterVec(r, "b_total", label.Empty())
	require.NoError(t, err)

	// a_total is written when b_total starts
	err = metrics.Collect(NewEncoder(failingWriter{}), r)
	require.ErrorIs(t, err, errClosed)
}
