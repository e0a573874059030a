/*
Package metrics provides typed, label-keyed metric families with lock-free hot paths
and Prometheus exposition.

# Overview

The library is organized around three pieces:

1. Label groups (package label): a plain struct of label values is encoded into a compact
label.Key by a label.GroupSet. Bounded label sets get a dense integer index, so recording a
value is an array access plus an atomic add.

2. Families: a Vec[G, S] holds one metric state S per label group G. Typed wrappers cover the
common cases:

	CounterVec[G]     monotonic uint64 counters
	GaugeVec[G]       int64 gauges
	FloatGaugeVec[G]  float64 gauges
	HistogramVec[G]   inclusive-bucket histograms sharing one *Thresholds

Families whose label set is bounded and at most the dense limit (DefaultDenseLimit unless set
with WithDenseLimit) preallocate every state in one slice. Other families store states in a
sharded map and create them on first use; entries are never removed.

3. Groups and the Registry: a Group writes families into an exposition.Encoder. Registry is the
usual Group: it deduplicates families by name, emits them in registration order, can nest other
groups with Include and prefixes names with a namespace.

	type Family interface {
	  CollectInto(name string, enc exposition.Encoder) error
	  Type() exposition.Type
	  Config() FamilyConfig
	}

	type Group interface {
	  CollectGroupInto(enc exposition.Encoder) error
	}

Registry also implements Inspector, which returns families together with a defensive copy of
their FamilyConfig.

# How registration works

 1. Fast path: look up the family in a sync.Map and return it if its type matches.
 2. Slow path: validate the name, acquire a per-name mutex, re-check, build the family with the
    registry's default options followed by the caller's, store config and family, and optionally
    delete the init mutex entry.
 3. Inspector methods take the same per-name mutex and return a defensive copy of the config.
 4. Unexpected internal states (for example "family listed but missing") are reported. In
    race builds and builds with the metricsdebug tag they panic; otherwise they are logged
    at most 10 times per registry.

# Example

	type ErrorLabels struct {
		Kind  ErrorKind
		Route string
	}

	routes := label.MustIndexSet("/api/v1/users", "/api/v1/orders")
	set := label.MustGroupSet(
		label.Dim("kind", label.Enum[ErrorKind]{},
			func(g ErrorLabels) ErrorKind { return g.Kind },
			func(g *ErrorLabels, v ErrorKind) { g.Kind = v }),
		label.Dim("route", routes,
			func(g ErrorLabels) string { return g.Route },
			func(g *ErrorLabels, v string) { g.Route = v }),
	)

	reg := metrics.NewRegistry(metrics.WithNamespace("http"))
	errs, err := metrics.RegisterCounterVec(reg, "request_errors_total", set,
		metrics.WithHelp("Failed HTTP requests."))
	if err != nil {
		return err
	}
	errs.Inc(ErrorLabels{Kind: Internal, Route: "/api/v1/users"})

	enc := text.NewEncoder(w)
	return metrics.Collect(enc, reg)

Hot paths that record the same series repeatedly compute the key once:

	k, _ := errs.Key(ErrorLabels{Kind: Internal, Route: "/api/v1/users"})
	errs.Metric(k).Inc()

# Errors

Configuration errors (invalid names, bad bucket layouts, duplicate or reserved labels) are
returned from constructors and wrap the sentinel errors of this package or package label.
Recording never fails except for With and the typed Inc/Observe helpers, which panic when a
fixed label value is unknown to its set; use Get to receive ErrUnknownLabelValue instead.
Encoder errors abort collection and are returned unchanged.

# Build and test

	go test ./...
	go test -race ./...
	go test -tags=metricsdebug ./...
*/
package metrics
