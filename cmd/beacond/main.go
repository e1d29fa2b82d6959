// Package main wires together the beacon service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cdoyle/beacon/internal/api"
	cachememory "github.com/cdoyle/beacon/internal/cache/memory"
	cacheredis "github.com/cdoyle/beacon/internal/cache/redis"
	"github.com/cdoyle/beacon/internal/clock/system"
	"github.com/cdoyle/beacon/internal/config"
	"github.com/cdoyle/beacon/internal/dispatch"
	"github.com/cdoyle/beacon/internal/event"
	"github.com/cdoyle/beacon/internal/faults"
	"github.com/cdoyle/beacon/internal/faults/sinks"
	"github.com/cdoyle/beacon/internal/logging"
	"github.com/cdoyle/beacon/internal/notify"
	"github.com/cdoyle/beacon/internal/notify/telegram"
	"github.com/cdoyle/beacon/internal/project"
	"github.com/cdoyle/beacon/internal/publisher"
	pubsubpublisher "github.com/cdoyle/beacon/internal/publisher/pubsub"
	"github.com/cdoyle/beacon/internal/storage/postgres"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poolCfg := postgres.PoolConfig{
		DSN:      cfg.DB.DSN,
		MaxConns: int32(cfg.DB.MaxConns),
	}
	projectStore, err := postgres.NewProjectStore(ctx, poolCfg)
	if err != nil {
		logger.Fatal("project store init failed", zap.Error(err))
	}
	defer projectStore.Close()

	eventStore, err := postgres.NewEventStore(ctx, poolCfg, cfg.DB.EventTable)
	if err != nil {
		logger.Fatal("event store init failed", zap.Error(err))
	}
	defer eventStore.Close()

	var cache project.Cache
	switch cfg.Cache.Backend {
	case "redis":
		redisCache, err := cacheredis.New(ctx, cacheredis.Config{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("redis cache init failed", zap.Error(err))
		}
		defer func() {
			if closeErr := redisCache.Close(); closeErr != nil {
				logger.Warn("redis close failed", zap.Error(closeErr))
			}
		}()
		cache = redisCache
	default:
		cache = cachememory.New()
	}

	var pub publisher.Publisher = publisher.NoOp{}
	if cfg.Publisher.Backend == "pubsub" {
		psPublisher, err := pubsubpublisher.New(ctx, cfg.Publisher.ProjectID, cfg.Publisher.Topic)
		if err != nil {
			logger.Fatal("pubsub publisher init failed", zap.Error(err))
		}
		defer func() {
			if closeErr := psPublisher.Close(); closeErr != nil {
				logger.Warn("pubsub close failed", zap.Error(closeErr))
			}
		}()
		pub = psPublisher
	}

	var notifier notify.Notifier
	if cfg.Notify.Enabled {
		notifier = telegram.New()
	}

	hub := faults.NewHub(
		faults.Config{Logger: logger.Named("faults")},
		sinks.NewLogSink(logger.Named("faults")),
		sinks.NewMetricsSink(),
	)

	resolver := project.NewResolver(cache, projectStore, logger.Named("resolver"))
	assembler := event.NewAssembler(system.New())
	dispatcher := dispatch.New(
		resolver,
		assembler,
		eventStore,
		notifier,
		pub,
		hub,
		logger.Named("dispatch"),
	)

	apiServer := api.NewServer(dispatcher, hub, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: time.Duration(cfg.Server.ReadHeaderTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second,
	)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Error("dispatcher drain error", zap.Error(err))
	}
	if err := hub.Close(shutdownCtx); err != nil {
		logger.Error("fault hub close error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
