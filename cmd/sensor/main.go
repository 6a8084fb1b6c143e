package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/TemirB/sensor-relay/internal/config"
	"github.com/TemirB/sensor-relay/internal/pkg/logger"
	"github.com/TemirB/sensor-relay/internal/sensor"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadSensor()

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fleet := sensor.NewFleet(cfg, log.Named("sensor"))

	if cfg.HTTPAddr != "" {
		r := chi.NewRouter()
		r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(fleet.Stats())
		})
		srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info("stats server listening", zap.String("addr", cfg.HTTPAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("stats server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	log.Info("sending readings",
		zap.String("relay", cfg.RelayAddr),
		zap.Uint32("first_device_id", cfg.DeviceID),
		zap.Duration("interval", cfg.Interval),
	)
	fleet.Run(ctx)
}
