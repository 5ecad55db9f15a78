package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/storesync/internal/background"
	"github.com/GriffinCanCode/storesync/internal/infrastructure/config"
	"github.com/GriffinCanCode/storesync/internal/infrastructure/logging"
	"github.com/GriffinCanCode/storesync/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/storesync/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/storesync/internal/persistence"
	"github.com/GriffinCanCode/storesync/internal/server"
	"github.com/GriffinCanCode/storesync/internal/stores"
	"github.com/GriffinCanCode/storesync/internal/transport/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	port := flag.String("port", cfg.Server.Port, "Server port")
	host := flag.String("host", cfg.Server.Host, "Server host")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode (colored logs, debug level)")
	snapshot := flag.String("snapshot", cfg.Sync.SnapshotPath, "Global store snapshot path")
	flags := flag.String("flags", cfg.Sync.FeatureFlagsPath, "Feature flag defaults file (yaml, toml or json)")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Server.Host = *host
	cfg.Logging.Development = *dev
	cfg.Sync.SnapshotPath = *snapshot
	cfg.Sync.FeatureFlagsPath = *flags

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "syncd: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logCfg := logging.DefaultConfig()
	if cfg.Logging.Development {
		logCfg = logging.DevelopmentConfig()
	} else {
		logCfg.Level = cfg.Logging.Level
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	logger.Info("Starting storesync daemon",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.Strings("scope", cfg.Sync.ScopePatterns),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(reg)

	tracer := tracing.New("syncd", logger.Component("tracing"))
	defer tracer.Close()

	flagDefaults, err := stores.LoadFlagDefaults(cfg.Sync.FeatureFlagsPath)
	if err != nil {
		return err
	}

	var snapshots *persistence.Store
	if cfg.Sync.SnapshotPath != "" {
		if snapshots, err = persistence.NewStore(cfg.Sync.SnapshotPath); err != nil {
			return err
		}
		defer snapshots.Close()
	}

	settings := ws.Settings{
		WriteTimeout:    cfg.WebSocket.WriteTimeout,
		PingInterval:    cfg.WebSocket.PingInterval,
		MaxMessageBytes: cfg.WebSocket.MaxMessageBytes,
	}
	if cfg.RateLimit.Enabled {
		settings.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		settings.RateBurst = cfg.RateLimit.Burst
	}
	hub := ws.NewHub(settings, metrics, logger.Component("ws"))

	bg, err := background.New(background.Options{
		Adapter:       hub,
		ScopePatterns: cfg.Sync.ScopePatterns,
		FlagDefaults:  flagDefaults,
		Snapshots:     snapshots,
		SendTimeout:   cfg.WebSocket.WriteTimeout,
		Metrics:       metrics,
		Tracer:        tracer,
		Logger:        logger.Component("background"),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the loop outlives ctx so Stop can tear down on it
	if err := bg.Start(context.Background()); err != nil {
		return err
	}

	srv := server.New(cfg, server.Deps{
		Background: bg,
		Hub:        hub,
		Metrics:    metrics,
		Gatherer:   reg,
		Tracer:     tracer,
		Logger:     logger.Component("http"),
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down gracefully")
	case runErr = <-errChan:
		if runErr != nil {
			logger.Error("Server error", zap.Error(runErr))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	bg.Stop(shutdownCtx)
	return runErr
}
