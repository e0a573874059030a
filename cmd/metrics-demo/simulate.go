package main

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/ygrebnov/metrics/v2/label"
)

// simulate records synthetic traffic from workers goroutines until ctx is done.
func simulate(ctx context.Context, m *httpMetrics, cfg Config, workers int) {
	var wg conc.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Go(func() {
			ticker := time.NewTicker(cfg.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					serveOne(m, cfg)
				}
			}
		})
	}
	wg.Wait()
}

func serveOne(m *httpMetrics, cfg Config) {
	route := cfg.Routes[rand.IntN(len(cfg.Routes))]
	req := requestLabels{Route: route, Tenant: fmt.Sprintf("tenant-%d", rand.IntN(cfg.Tenants))}

	inFlight := m.inFlight.With(label.NoLabels{})
	inFlight.Inc()
	defer inFlight.Dec()

	m.requests.Inc(req)
	// log-normal latency around 20ms
	m.latency.Observe(req, 0.02*math.Exp(rand.NormFloat64()))

	switch p := rand.Float64(); {
	case p < 0.01:
		m.errors.Inc(errorLabels{Kind: kindInternal, Route: route})
	case p < 0.03:
		m.errors.Inc(errorLabels{Kind: kindNetwork, Route: route})
	case p < 0.08:
		m.errors.Inc(errorLabels{Kind: kindUser, Route: route})
	}
}
