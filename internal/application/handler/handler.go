package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/TemirB/sensor-relay/internal/config"
	"github.com/TemirB/sensor-relay/internal/domain"
	"github.com/TemirB/sensor-relay/internal/protocol"
	"github.com/TemirB/sensor-relay/internal/pkg/retry"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

//go:generate mockgen -source internal/application/handler/handler.go -destination=internal/application/handler/handler_mock_test.go -package=handler

var (
	ErrBadFrame    = errors.New("bad frame")
	ErrStore       = errors.New("store failed")
	ErrCircuitOpen = errors.New("circuit breaker open")
)

type Service interface {
	Store(ctx context.Context, r *domain.Reading) error
}

type brk interface {
	Allow() error
	Success()
	Failure()
}

type Handler struct {
	service     Service
	breaker     brk
	logger      *zap.Logger
	retryPolicy config.Retry
}

func NewHandler(service Service, brk brk, retryPolicy config.Retry, logger *zap.Logger) *Handler {
	return &Handler{
		service:     service,
		breaker:     brk,
		logger:      logger,
		retryPolicy: retryPolicy,
	}
}

// Handle processes the payload of one frame. Malformed payloads are rejected
// before the breaker is consulted, so a broken sensor cannot open it for
// everyone else.
func (h *Handler) Handle(ctx context.Context, payload []byte) error {
	reading, err := protocol.UnmarshalReading(payload)
	if err == nil {
		err = reading.Validate()
	}
	if err != nil {
		h.logger.Error("bad reading",
			zap.Error(err),
			zap.Int("payload_bytes", len(payload)),
		)
		return fmt.Errorf("%w: %w", ErrBadFrame, err)
	}

	if err := h.breaker.Allow(); err != nil {
		h.logger.Warn("circuit breaker is open",
			zap.Error(err),
			zap.Uint32("device_id", reading.DeviceID),
			zap.Uint64("event_id", reading.EventID),
		)
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}

	if err := retry.Do(ctx, h.retryPolicy, func() error {
		err := h.service.Store(ctx, &reading)
		if isDataException(err) {
			return retry.Permanent(err)
		}
		return err
	}); err != nil {
		if isDataException(err) {
			// the database answered; the reading is what it refused
			h.breaker.Success()
			h.logger.Error("reading rejected by storage",
				zap.Uint32("device_id", reading.DeviceID),
				zap.Uint64("event_id", reading.EventID),
				zap.Error(err),
			)
			return fmt.Errorf("%w: %w", ErrBadFrame, err)
		}

		h.logger.Error("store failed after retries",
			zap.Uint32("device_id", reading.DeviceID),
			zap.Uint64("event_id", reading.EventID),
			zap.Error(err),
		)
		h.breaker.Failure()
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	h.breaker.Success()
	h.logger.Debug("successfully processed reading",
		zap.Uint32("device_id", reading.DeviceID),
		zap.Uint64("event_id", reading.EventID),
		zap.Int("payload_bytes", len(payload)),
	)
	return nil
}

// isDataException reports SQLSTATE class 22: the value itself is unacceptable
// and no retry will change that.
func isDataException(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "22")
}
