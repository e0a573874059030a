package metrics

import (
	"fmt"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/metrics/v2/label"
)

func TestCounterVec_Dense(t *testing.T) {
	v, err := NewCounterVec(reqSet(t, label.MustIndexSet(testRoutes...)), WithHelp("Requests."))
	require.NoError(t, err)
	require.True(t, v.Dense())
	assert.Equal(t, 6, v.Len())

	v.Inc(reqLabels{Method: methodPost, Route: "/orders"})
	v.IncBy(reqLabels{Method: methodPost, Route: "/orders"}, 2)

	k, ok := v.Key(reqLabels{Method: methodPost, Route: "/orders"})
	require.True(t, ok)
	assert.Equal(t, uint64(3), v.Metric(k).Get())
	assert.Equal(t, uint64(3), GetMetric(v.Vec, k, (*Counter).Get))

	var enc recordingEncoder
	require.NoError(t, v.CollectInto("requests_total", &enc))
	assert.Equal(t, []string{
		`family requests_total counter "Requests."`,
		"requests_total{method=GET,route=/users} 0",
		"requests_total{method=GET,route=/orders} 0",
		"requests_total{method=GET,route=/healthz} 0",
		"requests_total{method=POST,route=/users} 0",
		"requests_total{method=POST,route=/orders} 3",
		"requests_total{method=POST,route=/healthz} 0",
	}, enc.lines)
}

func TestVec_UnknownLabelValue(t *testing.T) {
	v, err := NewCounterVec(reqSet(t, label.MustIndexSet(testRoutes...)))
	require.NoError(t, err)

	g := reqLabels{Method: methodGet, Route: "/nope"}
	_, ok := v.Key(g)
	assert.False(t, ok)

	c, err := v.Get(g)
	require.ErrorIs(t, err, ErrUnknownLabelValue)
	assert.Nil(t, c)
	assert.Panics(t, func() { v.Inc(g) })
	assert.Panics(t, func() { v.IncBy(g, 2) })

	set := reqSet(t, label.MustIndexSet(testRoutes...))
	gv, err := NewGaugeVec(set)
	require.NoError(t, err)
	assert.Panics(t, func() { gv.Inc(g) })
	assert.Panics(t, func() { gv.Dec(g) })
	assert.Panics(t, func() { gv.Set(g, 1) })
	fv, err := NewFloatGaugeVec(set)
	require.NoError(t, err)
	assert.Panics(t, func() { fv.Set(g, 1) })
	assert.Panics(t, func() { fv.Add(g, 1) })
	hv, err := NewHistogramVec(set, MustThresholds(1))
	require.NoError(t, err)
	assert.Panics(t, func() { hv.Observe(g, 1) })
	_, err = hv.Get(g)
	require.ErrorIs(t, err, ErrUnknownLabelValue)
}

func TestCounterVec_Sparse(t *testing.T) {
	routes := label.NewInternSet()
	v, err := NewCounterVec(reqSet(t, routes))
	require.NoError(t, err)
	require.False(t, v.Dense())
	assert.Equal(t, 0, v.Len())

	var enc recordingEncoder
	require.NoError(t, v.CollectInto("requests_total", &enc))
	assert.Empty(t, enc.lines, "empty sparse families are skipped")

	v.Inc(reqLabels{Method: methodGet, Route: "/b"})
	v.Inc(reqLabels{Method: methodPost, Route: "/a"})
	v.Inc(reqLabels{Method: methodGet, Route: "/b"})

	assert.Equal(t, 2, v.Len())
	require.NoError(t, v.CollectInto("requests_total", &enc))
	// sparse series are emitted in key order
	assert.Equal(t, []string{
		`family requests_total counter ""`,
		"requests_total{method=GET,route=/b} 2",
		"requests_total{method=POST,route=/a} 1",
	}, enc.lines)
}

func TestVec_SparseRejectsForeignKeys(t *testing.T) {
	v, err := NewCounterVec(label.Empty(), WithSparse())
	require.NoError(t, err)

	recovered := func() (r any) {
		defer func() { r = recover() }()
		v.Metric(label.Key{Dynamic: [label.MaxDynamic]int{7}}).Inc()
		return nil
	}()
	require.NotNil(t, recovered)
	perr, ok := recovered.(error)
	require.True(t, ok)
	assert.ErrorIs(t, perr, label.ErrIndexOutOfRange)
	assert.Equal(t, 0, v.Len(), "rejected keys are not stored")

	v.Inc(label.NoLabels{})
	var enc recordingEncoder
	require.NoError(t, v.CollectInto("jobs_total", &enc))
	assert.Equal(t, []string{`family jobs_total counter ""`, "jobs_total{} 1"}, enc.lines)
}

func TestVec_SparseConcurrentSameKey(t *testing.T) {
	v, err := NewCounterVec(reqSet(t, label.NewInternSet()), WithShards(3))
	require.NoError(t, err)

	var wg conc.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Go(func() {
			for j := 0; j < 100; j++ {
				v.Inc(reqLabels{Method: methodGet, Route: fmt.Sprintf("/r%d", j%10)})
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 10, v.Len())
	var total uint64
	v.Range(func(g reqLabels, c *Counter) bool {
		assert.Equal(t, uint64(160), c.Get(), g.Route)
		total += c.Get()
		return true
	})
	assert.Equal(t, uint64(1600), total)
}

func TestVec_StoragePolicy(t *testing.T) {
	routes := label.MustIndexSet(testRoutes...)

	t.Run("forced sparse", func(t *testing.T) {
		v, err := NewGaugeVec(reqSet(t, routes), WithSparse())
		require.NoError(t, err)
		assert.False(t, v.Dense())
	})

	t.Run("over dense limit", func(t *testing.T) {
		var l recordingLogger
		v, err := NewGaugeVec(reqSet(t, routes), WithDenseLimit(5), WithFamilyLogger(&l))
		require.NoError(t, err)
		assert.False(t, v.Dense())
		require.Len(t, l.debug, 1)
		assert.Contains(t, l.debug[0], "cardinality 6 exceeds dense limit 5")
	})

	t.Run("at dense limit", func(t *testing.T) {
		v, err := NewGaugeVec(reqSet(t, routes), WithDenseLimit(6))
		require.NoError(t, err)
		assert.True(t, v.Dense())
	})
}

func TestVec_CardinalityWarning(t *testing.T) {
	var l recordingLogger
	v, err := NewCounterVec(reqSet(t, label.NewInternSet()),
		WithCardinalityWarning(2), WithFamilyLogger(&l), withName("requests_total"))
	require.NoError(t, err)

	for i := 0; i < 9; i++ {
		v.Inc(reqLabels{Route: fmt.Sprint(i)})
	}
	// thresholds 2, 4 and 8
	w := l.warnings()
	require.Len(t, w, 3)
	assert.Equal(t, "family requests_total: 2 series, label cardinality keeps growing", w[0])
}

func TestGaugeVecs(t *testing.T) {
	routes := label.MustIndexSet(testRoutes...)
	g, err := NewGaugeVec(reqSet(t, routes))
	require.NoError(t, err)
	f, err := NewFloatGaugeVec(reqSet(t, routes))
	require.NoError(t, err)

	lbl := reqLabels{Method: methodGet, Route: "/healthz"}
	g.Inc(lbl)
	g.Inc(lbl)
	g.Dec(lbl)
	f.Set(lbl, 0.5)
	f.Add(lbl, 0.25)
	assert.Equal(t, int64(1), g.With(lbl).Get())
	assert.Equal(t, 0.75, f.With(lbl).Get())

	g.Set(lbl, 42)
	assert.Equal(t, int64(42), g.With(lbl).Get())
}

func TestHistogramVec(t *testing.T) {
	th := MustThresholds(0.1, 1)
	v, err := NewHistogramVec(reqSet(t, label.MustIndexSet("/users")), th)
	require.NoError(t, err)
	assert.Same(t, th, v.Thresholds())

	v.Observe(reqLabels{Method: methodPost, Route: "/users"}, 0.1)
	v.Observe(reqLabels{Method: methodPost, Route: "/users"}, 3)

	var enc recordingEncoder
	require.NoError(t, v.CollectInto("latency_seconds", &enc))
	assert.Equal(t, []string{
		`family latency_seconds histogram ""`,
		"latency_seconds{method=GET,route=/users} [0 0 0] count=0 sum=0",
		"latency_seconds{method=POST,route=/users} [1 1 2] count=2 sum=3.1",
	}, enc.lines)
}

func TestHistogramVec_ReservedLabel(t *testing.T) {
	set := label.MustGroupSet(
		label.Dim("le", label.MustIndexSet("a"),
			func(g reqLabels) string { return g.Route },
			func(g *reqLabels, v string) { g.Route = v }),
	)
	_, err := NewHistogramVec(set, MustThresholds(1))
	require.ErrorIs(t, err, ErrReservedLabel)

	_, err = NewHistogramVec(reqSet(t, label.NewInternSet()), MustThresholds(1),
		WithConstLabels(map[string]string{"le": "x"}))
	require.ErrorIs(t, err, ErrReservedLabel)

	_, err = NewHistogramVec(reqSet(t, label.NewInternSet()), nil)
	require.ErrorIs(t, err, ErrInvalidBuckets)
}

func TestVec_ConstLabels(t *testing.T) {
	v, err := NewCounterVec(reqSet(t, label.MustIndexSet("/users")),
		WithConstLabels(map[string]string{"zone": "a", "app": "api"}))
	require.NoError(t, err)
	v.Inc(reqLabels{Method: methodGet, Route: "/users"})

	var enc recordingEncoder
	require.NoError(t, v.CollectInto("hits_total", &enc))
	assert.Equal(t, "hits_total{app=api,zone=a,method=GET,route=/users} 1", enc.lines[1])

	_, err = NewCounterVec(reqSet(t, label.NewInternSet()),
		WithConstLabels(map[string]string{"route": "x"}))
	require.ErrorIs(t, err, label.ErrDuplicateLabelName)

	_, err = NewCounterVec(reqSet(t, label.NewInternSet()),
		WithConstLabels(map[string]string{"0bad": "x"}))
	require.ErrorIs(t, err, label.ErrInvalidLabelName)
}

func TestVec_CollectIntoStopsOnError(t *testing.T) {
	v, err := NewCounterVec(reqSet(t, label.MustIndexSet(testRoutes...)))
	require.NoError(t, err)

	enc := recordingEncoder{failAfter: 2}
	err = v.CollectInto("requests_total", &enc)
	require.ErrorIs(t, err, errSink)
	// family header plus the first sample
	assert.Len(t, enc.lines, 2)
	assert.Equal(t, 2, enc.samples)
}

func TestVec_ConfigIsCopied(t *testing.T) {
	labels := map[string]string{"app": "api"}
	v, err := NewCounterVec(label.Empty(), WithHelp("h"), WithUnit("requests"), WithConstLabels(labels))
	require.NoError(t, err)
	labels["app"] = "changed"

	cfg := v.Config()
	assert.Equal(t, "h", cfg.Help)
	assert.Equal(t, "requests", cfg.Unit)
	cfg.ConstLabels["app"] = "mutated"
	assert.Equal(t, "api", v.Config().ConstLabels["app"])
}
