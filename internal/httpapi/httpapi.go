package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/TemirB/sensor-relay/internal/application/service"
	"github.com/TemirB/sensor-relay/internal/domain"
	"github.com/TemirB/sensor-relay/internal/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

//go:generate mockgen -source internal/httpapi/httpapi.go -destination=internal/httpapi/httpapi_mock_test.go -package=httpapi

type ReadingService interface {
	LatestWithStats(ctx context.Context, deviceID uint32) (*domain.Reading, service.LookupStats, error)
	History(ctx context.Context, deviceID uint32, limit int) ([]domain.Reading, error)
}

type PoolStats interface {
	Size() int
	Alive() int
	Pending() int
}

type Server struct {
	service ReadingService
	pool    PoolStats
	router  chi.Router
	logger  *zap.Logger
	metrics observability.Metrics
}

// New builds the query API. metricsHandler is mounted on /metrics when not nil.
func New(service ReadingService, pool PoolStats, metricsHandler http.Handler, logger *zap.Logger, metrics observability.Metrics) *Server {
	s := &Server{
		service: service,
		pool:    pool,
		router:  chi.NewRouter(),
		logger:  logger,
		metrics: metrics,
	}
	s.routes(metricsHandler)
	return s
}

func (s *Server) routes(metricsHandler http.Handler) {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(ServerTimingApp(s.metrics))

	r.Get("/healthz", s.healthz)
	r.Get("/pool", s.poolStats)
	r.Route("/devices/{device_id}", func(r chi.Router) {
		r.Get("/latest", s.latest)
		r.Get("/readings", s.readings)
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type poolResponse struct {
	Size    int `json:"size"`
	Alive   int `json:"alive"`
	Pending int `json:"pending"`
}

func (s *Server) poolStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, poolResponse{
		Size:    s.pool.Size(),
		Alive:   s.pool.Alive(),
		Pending: s.pool.Pending(),
	})
}

func (s *Server) latest(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(w, r)
	if !ok {
		return
	}

	reading, st, err := s.service.LatestWithStats(r.Context(), id)
	if err != nil {
		s.writeLookupError(w, id, err)
		return
	}

	observability.AppendServerTiming(w, "cache", st.CacheMs, "")
	observability.AppendServerTiming(w, "db", st.DBMs, "")
	observability.AppendServerTiming(w, "source", 0, string(st.Source))
	w.Header().Set("X-Source", string(st.Source))
	observability.SetIfPos(w, "X-Cache-Time", st.CacheMs)
	observability.SetIfPos(w, "X-DB-Time", st.DBMs)

	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) readings(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(w, r)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	rs, err := s.service.History(r.Context(), id, limit)
	if err != nil {
		s.writeLookupError(w, id, err)
		return
	}
	if len(rs) == 0 {
		http.Error(w, "no readings for this device", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (s *Server) writeLookupError(w http.ResponseWriter, id uint32, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "no readings for this device", http.StatusNotFound)
		return
	}
	s.logger.Error("lookup failed", zap.Uint32("device_id", id), zap.Error(err))
	http.Error(w, "Service error", http.StatusInternalServerError)
}

func deviceID(w http.ResponseWriter, r *http.Request) (uint32, bool) {
	raw := chi.URLParam(r, "device_id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		http.Error(w, "device id must be an unsigned 32-bit integer", http.StatusBadRequest)
		return 0, false
	}
	return uint32(id), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// ListenAndServe serves until ctx is cancelled, then shuts the server down
// gracefully. A clean shutdown returns nil.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Handler() http.Handler { return s.router }
