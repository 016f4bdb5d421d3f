package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aevon-lab/servicestate/internal/aggregation"
	corecfg "github.com/aevon-lab/servicestate/internal/core/config"
	"github.com/aevon-lab/servicestate/internal/core/resolver"
	"github.com/aevon-lab/servicestate/internal/core/statecache"
	"github.com/aevon-lab/servicestate/internal/core/storage/postgres"
	"github.com/aevon-lab/servicestate/internal/ingestion"
	"github.com/aevon-lab/servicestate/internal/metrics"
	"github.com/aevon-lab/servicestate/internal/migrations"
	"github.com/aevon-lab/servicestate/internal/publish"
	"github.com/aevon-lab/servicestate/internal/server"
	"github.com/aevon-lab/servicestate/internal/stream"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	configPath := flag.String("config", "servicestate.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config",
		"server_port", cfg.Server.Port,
		"nats_enabled", cfg.NATS.Enabled,
		"stream_enabled", cfg.Stream.Enabled,
		"worker_count", cfg.Aggregation.WorkerCount,
		"strategy_mappings", len(cfg.StrategyMapping),
	)

	// 2. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 2.1. Run Database Migrations, then prepare statements against the final schema
	if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	if err := dbAdapter.Prepare(); err != nil {
		slog.Error("Failed to prepare database statements", "error", err)
		os.Exit(1)
	}

	// 3. Metrics
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	registry := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	// 4. Publishers: websocket hub and NATS
	var publishers publish.Multi
	var hub *stream.Hub
	if cfg.Stream.Enabled {
		hub = stream.NewHub(cfg.Stream.BufferSize, cfg.Stream.EffectiveWriteTimeout())
		defer hub.Close()
		publishers = append(publishers, hub)
	}

	var nc *nats.Conn
	if cfg.NATS.Enabled {
		nc, err = nats.Connect(cfg.NATS.URL,
			nats.Name("servicestate"),
			nats.MaxReconnects(-1),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				slog.Warn("[NATS] Disconnected", "error", err)
			}),
			nats.ReconnectHandler(func(c *nats.Conn) {
				slog.Info("[NATS] Reconnected", "url", c.ConnectedUrl())
			}),
		)
		if err != nil {
			slog.Error("Failed to connect to NATS", "url", cfg.NATS.URL, "error", err)
			os.Exit(1)
		}
		defer nc.Close()
		publishers = append(publishers, publish.NewNATSPublisher(nc, cfg.NATS.ServiceUpdatesSubject))
	}

	if len(publishers) == 0 {
		slog.Warn("No publishers enabled, state changes will only update the cache")
	}

	// 5. Core: resolver, cache, engine, maintenance pass-through
	factory, err := resolver.NewFactory(dbAdapter, cfg.StrategyMapping)
	if err != nil {
		slog.Error("Failed to build strategy factory", "error", err)
		os.Exit(1)
	}

	cache := statecache.New()
	names := aggregation.NewClusterNames(dbAdapter)
	engine := aggregation.NewEngine(names, factory, cache, publishers, recorder, aggregation.Options{
		WorkerCount: cfg.Aggregation.WorkerCount,
	})
	maintenance := aggregation.NewMaintenancePassThrough(names, publishers, recorder)

	// 6. Ingestion (HTTP + NATS)
	ingestionSvc := ingestion.NewService(dbAdapter, engine, maintenance, cache, cfg.Server.MaxBodySizeMB)

	var consumer *ingestion.Consumer
	if nc != nil {
		consumer = ingestion.NewConsumer(ingestionSvc, ingestion.ConsumerConfig{
			ComponentUpdatesSubject: cfg.NATS.ComponentUpdatesSubject,
			MaintenanceSubject:      cfg.NATS.MaintenanceSubject,
			QueueGroup:              cfg.NATS.QueueGroup,
			HandlerTimeout:          cfg.NATS.EffectiveHandlerTimeout(),
		})
		if err := consumer.Start(nc); err != nil {
			slog.Error("Failed to start NATS consumer", "error", err)
			os.Exit(1)
		}
	}

	// 7. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter, cfg.Server.Mode)
	ingestionSvc.RegisterRoutes(srv.Engine)
	if hub != nil {
		hub.RegisterRoutes(srv.Engine)
	}
	if cfg.Metrics.Enabled {
		srv.MountMetrics(metrics.HTTPHandler(registry))
	}

	// 8. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler → triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	if consumer != nil {
		consumer.Stop()
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
