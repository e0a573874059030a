package main

import (
	"fmt"

	metrics "github.com/ygrebnov/metrics/v2"
	"github.com/ygrebnov/metrics/v2/exposition"
	"github.com/ygrebnov/metrics/v2/label"
)

type errorKind uint8

const (
	kindUser errorKind = iota
	kindInternal
	kindNetwork
)

var errorKindNames = [...]string{"user", "internal", "network"}

func (errorKind) Cardinality() int       { return len(errorKindNames) }
func (k errorKind) Encode() int          { return int(k) }
func (errorKind) Decode(i int) errorKind { return errorKind(i) }
func (k errorKind) Visit(v label.Visitor) {
	v.WriteStr(errorKindNames[k])
}

type errorLabels struct {
	Kind  errorKind
	Route string
}

type requestLabels struct {
	Route  string
	Tenant string
}

// httpMetrics is a hand-written group: its families are emitted in field order.
type httpMetrics struct {
	errors   *metrics.CounterVec[errorLabels]
	requests *metrics.CounterVec[requestLabels]
	latency  *metrics.HistogramVec[requestLabels]
	inFlight *metrics.GaugeVec[label.NoLabels]
}

func newHTTPMetrics(cfg Config, logger metrics.Logger) (*httpMetrics, error) {
	routes, err := label.NewIndexSet(cfg.Routes...)
	if err != nil {
		return nil, fmt.Errorf("routes: %w", err)
	}
	// shared by requests and latency so both agree on tenant indices
	tenants := label.NewInternSet()

	errorSet, err := label.NewGroupSet(
		label.Dim("kind", label.Enum[errorKind]{},
			func(g errorLabels) errorKind { return g.Kind },
			func(g *errorLabels, v errorKind) { g.Kind = v }),
		label.Dim("route", routes,
			func(g errorLabels) string { return g.Route },
			func(g *errorLabels, v string) { g.Route = v }),
	)
	if err != nil {
		return nil, err
	}
	requestSet, err := label.NewGroupSet(
		label.Dim("route", routes,
			func(g requestLabels) string { return g.Route },
			func(g *requestLabels, v string) { g.Route = v }),
		label.Dim("tenant", tenants,
			func(g requestLabels) string { return g.Tenant },
			func(g *requestLabels, v string) { g.Tenant = v }),
	)
	if err != nil {
		return nil, err
	}
	buckets, err := metrics.ExponentialBuckets(cfg.Buckets.Start, cfg.Buckets.Factor, cfg.Buckets.Count)
	if err != nil {
		return nil, err
	}

	logOpt := metrics.WithFamilyLogger(logger)
	m := &httpMetrics{}
	if m.errors, err = metrics.NewCounterVec(errorSet, logOpt,
		metrics.WithHelp("Failed HTTP requests by error kind and route.")); err != nil {
		return nil, err
	}
	if m.requests, err = metrics.NewCounterVec(requestSet, logOpt,
		metrics.WithHelp("HTTP requests by route and tenant."),
		metrics.WithCardinalityWarning(int64(4*len(cfg.Routes)))); err != nil {
		return nil, err
	}
	if m.latency, err = metrics.NewHistogramVec(requestSet, buckets, logOpt,
		metrics.WithHelp("HTTP request latency."), metrics.WithUnit("seconds")); err != nil {
		return nil, err
	}
	if m.inFlight, err = metrics.NewGaugeVec(label.Empty(), logOpt,
		metrics.WithHelp("Requests currently being served.")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *httpMetrics) CollectGroupInto(enc exposition.Encoder) error {
	if err := m.errors.CollectInto("request_errors_total", enc); err != nil {
		return err
	}
	if err := m.requests.CollectInto("requests_total", enc); err != nil {
		return err
	}
	if err := m.latency.CollectInto("request_duration_seconds", enc); err != nil {
		return err
	}
	return m.inFlight.CollectInto("requests_in_flight", enc)
}
