// Command clobd runs the limitbook matching engine behind a TCP gateway:
// it loads config, wires up the engine, metrics, and transport, and
// serves until it receives SIGTERM/SIGINT.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"limitbook/internal/config"
	"limitbook/internal/engine"
	"limitbook/internal/metrics"
	"limitbook/internal/transport"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	metricsAddr := flag.String("metrics-address", ":2112", "address to serve Prometheus metrics on")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	configureLogging(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	eng := engine.New(cfg.Book.Symbols...)
	m := metrics.New(prometheus.DefaultRegisterer)

	go serveMetrics(*metricsAddr)

	srv := transport.New(cfg.Server.Address, cfg.Server.Port, cfg.Server.Workers, cfg.Book.MaxLevelsPerDepth, eng, m)

	log.Info().
		Str("address", cfg.Server.Address).
		Int("port", cfg.Server.Port).
		Msg("starting limitbook")

	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("transport exited with error")
	}
}

func configureLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server exited")
	}
}
