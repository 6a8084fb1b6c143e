package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/TemirB/sensor-relay/internal/application/handler"
	"github.com/TemirB/sensor-relay/internal/application/service"
	"github.com/TemirB/sensor-relay/internal/cache"
	"github.com/TemirB/sensor-relay/internal/config"
	"github.com/TemirB/sensor-relay/internal/database"
	"github.com/TemirB/sensor-relay/internal/httpapi"
	"github.com/TemirB/sensor-relay/internal/kafka"
	"github.com/TemirB/sensor-relay/internal/observability"
	"github.com/TemirB/sensor-relay/internal/pkg/breaker"
	"github.com/TemirB/sensor-relay/internal/pkg/logger"
	"github.com/TemirB/sensor-relay/internal/pkg/pool"
	"github.com/TemirB/sensor-relay/internal/relay"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewPrometheus(reg, "relay")
	if err != nil {
		log.Fatal("failed to register metrics", zap.Error(err))
	}

	pg, err := database.Connect(ctx, cfg.DSN(), log.Named("postgres"))
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pg.Close()

	repo := database.New(pg, cfg.Tables)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("failed to prepare schema", zap.Error(err))
	}

	lru, err := cache.New(cfg.CacheCap)
	if err != nil {
		log.Fatal("failed to create cache", zap.Error(err))
	}
	warmed := lru.Warm(ctx, repo)
	log.Info("cache warmed", zap.Int("devices", warmed), zap.Int("capacity", cfg.CacheCap))

	var publisher service.Publisher
	if cfg.Kafka.Enabled() {
		if err := kafka.EnsureTopic(ctx, cfg.Kafka, 3, 1, log.Named("kafka")); err != nil {
			log.Fatal("failed to prepare kafka topic", zap.Error(err))
		}
		pub := kafka.NewPublisher(kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic), log.Named("kafka"), metrics)
		defer func() {
			if err := pub.Close(); err != nil {
				log.Warn("failed to close kafka writer", zap.Error(err))
			}
		}()
		publisher = pub
	}

	svc := service.NewService(lru, repo, publisher, log.Named("service"), metrics)
	h := handler.NewHandler(svc, breaker.New(cfg.Breaker), cfg.Retry, log.Named("handler"))

	workers := pool.New(cfg.Relay.Workers,
		pool.WithName("relay"),
		pool.WithLogger(log.Named("pool")),
		pool.WithMetrics(metrics),
	)

	srv := relay.New(h, workers, cfg.Relay.MaxFrame, cfg.Relay.ReadTimeout, log.Named("relay"), metrics)
	api := httpapi.New(svc, workers, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), log.Named("http"), metrics)

	serveAll(ctx, stop, log,
		func(ctx context.Context) error { return srv.ListenAndServe(ctx, cfg.Relay.ListenAddr()) },
		func(ctx context.Context) error {
			log.Info("http api listening", zap.String("addr", cfg.HTTPAddr))
			return api.ListenAndServe(ctx, cfg.HTTPAddr)
		},
	)

	// relay has closed every connection by now; let queued ones drain
	workers.Shutdown()
	log.Info("relay stopped")
}
