package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"realty-engine/internal/calendar"
	"realty-engine/internal/config"
	"realty-engine/internal/engine"
	"realty-engine/internal/handler"
	"realty-engine/internal/jurisdiction"
	"realty-engine/internal/logger"
	"realty-engine/internal/metrics"
	"realty-engine/internal/operations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	jurisdictions, err := loadJurisdictions(cfg.JurisdictionsFile)
	if err != nil {
		log.Fatal("failed to load jurisdiction table", zap.String("file", cfg.JurisdictionsFile), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	eng := engine.New(operations.NewRegistry(jurisdictions, calendar.Hijri{}), log, m, cfg.MaxParallel)
	h := handler.New(ctx, eng, jurisdictions, log, prometheus.DefaultGatherer)

	srv := &fasthttp.Server{
		Handler:            h.Route,
		Name:               "realty-engine",
		ReadTimeout:        cfg.ReadTimeout,
		WriteTimeout:       cfg.WriteTimeout,
		MaxRequestBodySize: cfg.MaxBodyBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("realty engine starting",
			zap.String("addr", cfg.Addr()),
			zap.Strings("jurisdictions", jurisdictions.Codes()),
			zap.Int("max_parallel", cfg.MaxParallel),
		)
		errCh <- srv.ListenAndServe(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}

// loadJurisdictions returns the embedded table unless path names an override.
func loadJurisdictions(path string) (*jurisdiction.Registry, error) {
	if path == "" {
		return jurisdiction.Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return jurisdiction.Load(f)
}
