package main

import (
	"log/slog"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	metrics "github.com/ygrebnov/metrics/v2"
	"github.com/ygrebnov/metrics/v2/exposition"
	"github.com/ygrebnov/metrics/v2/exposition/promcollector"
	"github.com/ygrebnov/metrics/v2/exposition/protobuf"
	"github.com/ygrebnov/metrics/v2/exposition/text"
)

// scrapeHandler serves g in the format negotiated from the Accept header.
func scrapeHandler(g metrics.Group, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var enc exposition.Encoder
		switch expfmt.Negotiate(r.Header).FormatType() {
		case expfmt.TypeProtoDelim:
			w.Header().Set("Content-Type", protobuf.ContentType)
			enc = protobuf.NewEncoder(w)
		default:
			w.Header().Set("Content-Type", text.ContentType)
			enc = text.NewEncoder(w)
		}
		if err := metrics.Collect(enc, g); err != nil {
			// headers are gone by now; the scraper sees a truncated body
			logger.Warn("scrape failed", "remote", r.RemoteAddr, "error", err)
		}
	})
}

// newMux serves the native endpoint on /metrics and the same families through
// client_golang, next to its Go runtime collector, on /metrics/client.
func newMux(g metrics.Group, logger *slog.Logger) *http.ServeMux {
	reg := prometheus.NewRegistry()
	reg.MustRegister(promcollector.New(g))
	reg.MustRegister(collectors.NewGoCollector())

	mux := http.NewServeMux()
	mux.Handle("/metrics", gzhttp.GzipHandler(scrapeHandler(g, logger)))
	mux.Handle("/metrics/client", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
