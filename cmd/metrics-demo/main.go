// Command metrics-demo serves synthetic HTTP metrics for scraping.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"

	metrics "github.com/ygrebnov/metrics/v2"
	"github.com/ygrebnov/metrics/v2/label"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" type:"path"`
	Listen  string `short:"l" help:"Listen address (overrides the config file)"`
	Workers int    `short:"w" help:"Number of simulated clients" default:"4"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("metrics-demo"),
		kong.Description("Serve synthetic HTTP metrics in Prometheus text and protobuf formats."),
	)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(newLogHandler(os.Stderr, logLevel))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("metrics-demo failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := loadConfig(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.Listen != "" {
		cfg.Listen = CLI.Listen
	}

	ml := metrics.NewSlogLogger(logger)
	m, err := newHTTPMetrics(cfg, ml)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry(metrics.WithNamespace(cfg.Namespace), metrics.WithLogger(ml))
	build, err := metrics.RegisterGaugeVec(reg, "build_info", label.Empty(),
		metrics.WithHelp("Always 1."), metrics.WithConstLabels(map[string]string{"version": version()}))
	if err != nil {
		return err
	}
	build.Set(label.NoLabels{}, 1)
	httpGroup, err := metrics.Namespace("http", m)
	if err != nil {
		return err
	}
	reg.Include(httpGroup)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           newMux(reg, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go simulate(ctx, m, cfg, CLI.Workers)

	logger.Info("serving metrics", "listen", cfg.Listen, "namespace", cfg.Namespace, "routes", len(cfg.Routes))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newLogHandler returns a colored handler for terminals and a plain text handler otherwise.
func newLogHandler(f *os.File, level slog.Level) slog.Handler {
	if fi, err := f.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
		return tint.NewHandler(f, &tint.Options{
			Level:      level,
			NoColor:    runtime.GOOS == "windows",
			TimeFormat: time.Kitchen,
		})
	}
	return slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
}

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "devel"
}
