package service

import (
	"context"
	"time"

	"github.com/TemirB/sensor-relay/internal/domain"
	"github.com/TemirB/sensor-relay/internal/observability"
	"go.uber.org/zap"
)

//go:generate mockgen -source internal/application/service/service.go -destination=internal/application/service/service_mock_test.go -package=service

type Cache interface {
	Set(*domain.Reading)
	Get(uint32) (*domain.Reading, bool)
}

type Storage interface {
	Insert(context.Context, *domain.Reading) error
	LatestByDevice(context.Context, uint32) (*domain.Reading, error)
	History(context.Context, uint32, int) ([]domain.Reading, error)
}

type Publisher interface {
	Publish(context.Context, *domain.Reading) error
}

type LookupSource string

const (
	SourceCache LookupSource = "cache"
	SourceDB    LookupSource = "db"
)

// LookupStats tells the API where a reading came from and what it cost.
type LookupStats struct {
	Source  LookupSource
	CacheMs float64
	DBMs    float64
}

type StoreStats struct {
	DBWriteMs float64
	PublishMs float64
	Published bool
}

const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 1000
)

type Service struct {
	cache     Cache
	storage   Storage
	publisher Publisher
	logger    *zap.Logger
	metrics   observability.Metrics
}

// NewService wires the read/write paths. publisher may be nil when readings
// are not forwarded anywhere.
func NewService(cache Cache, storage Storage, publisher Publisher, logger *zap.Logger, metrics observability.Metrics) *Service {
	return &Service{
		cache:     cache,
		storage:   storage,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// StoreWithStats persists r, then refreshes the cache and forwards it. Only
// the database write can fail the call.
func (s *Service) StoreWithStats(ctx context.Context, r *domain.Reading) (StoreStats, error) {
	var st StoreStats

	t0 := time.Now()
	if err := s.storage.Insert(ctx, r); err != nil {
		s.logger.Error(
			"Error while storing reading in db",
			zap.Uint32("device_id", r.DeviceID),
			zap.Uint64("event_id", r.EventID),
			zap.Error(err),
		)
		return st, err
	}
	st.DBWriteMs = convertToMs(t0)
	s.metrics.ObserveStore(st.DBWriteMs)

	s.cache.Set(r)

	if s.publisher != nil {
		tPub := time.Now()
		if err := s.publisher.Publish(ctx, r); err != nil {
			s.logger.Warn("Reading stored but not published",
				zap.Uint32("device_id", r.DeviceID),
				zap.Uint64("event_id", r.EventID),
				zap.Error(err),
			)
		} else {
			st.Published = true
		}
		st.PublishMs = convertToMs(tPub)
	}

	s.logger.Info("Reading stored",
		zap.Uint32("device_id", r.DeviceID),
		zap.Uint64("event_id", r.EventID),
		zap.Float64("db_write_ms", st.DBWriteMs),
	)
	return st, nil
}

func (s *Service) Store(ctx context.Context, r *domain.Reading) error {
	_, err := s.StoreWithStats(ctx, r)
	return err
}

func (s *Service) Latest(ctx context.Context, deviceID uint32) (*domain.Reading, error) {
	r, _, err := s.LatestWithStats(ctx, deviceID)
	return r, err
}

func (s *Service) LatestWithStats(ctx context.Context, deviceID uint32) (*domain.Reading, LookupStats, error) {
	var st LookupStats

	tCacheStart := time.Now()
	if r, ok := s.cache.Get(deviceID); ok {
		st.Source = SourceCache
		st.CacheMs = convertToMs(tCacheStart)
		s.metrics.IncCacheHit()
		s.metrics.ObserveLookup(string(st.Source), st.CacheMs, 0)

		s.logger.Debug("Reading fetched from cache",
			zap.Uint32("device_id", deviceID),
			zap.Float64("cache_ms", st.CacheMs),
		)
		return r, st, nil
	}

	s.metrics.IncCacheMiss()
	st.CacheMs = convertToMs(tCacheStart)

	tDbStart := time.Now()
	r, err := s.storage.LatestByDevice(ctx, deviceID)
	if err != nil {
		s.logger.Warn(
			"Can't find latest reading",
			zap.Uint32("device_id", deviceID),
			zap.Error(err),
			zap.Float64("cache_ms", st.CacheMs),
		)
		return nil, st, err
	}

	st.Source = SourceDB
	st.DBMs = convertToMs(tDbStart)

	s.cache.Set(r)

	s.metrics.ObserveLookup(string(st.Source), st.CacheMs, st.DBMs)
	s.logger.Debug("Reading fetched from DB",
		zap.Uint32("device_id", deviceID),
		zap.Float64("cache_ms", st.CacheMs),
		zap.Float64("db_ms", st.DBMs),
	)
	return r, st, nil
}

// History returns up to limit readings of a device, newest first. The limit
// is clamped to (0, MaxHistoryLimit]; non-positive means DefaultHistoryLimit.
func (s *Service) History(ctx context.Context, deviceID uint32, limit int) ([]domain.Reading, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	t0 := time.Now()
	rs, err := s.storage.History(ctx, deviceID, limit)
	if err != nil {
		s.logger.Error("Can't load reading history",
			zap.Uint32("device_id", deviceID),
			zap.Int("limit", limit),
			zap.Error(err),
		)
		return nil, err
	}
	s.metrics.ObserveLookup("history", 0, convertToMs(t0))
	return rs, nil
}

func convertToMs(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
