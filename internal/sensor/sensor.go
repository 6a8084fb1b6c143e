package sensor

import (
	"context"
	"math/rand"
	"net"
	"sync/atomic"
	"time"

	"github.com/TemirB/sensor-relay/internal/domain"
	"github.com/TemirB/sensor-relay/internal/protocol"
	"go.uber.org/zap"
)

type Sensor struct {
	deviceID uint32
	addr     string
	interval time.Duration
	dht      *DHT
	eventID  uint64
	dialer   net.Dialer
	logger   *zap.Logger

	sent   atomic.Int64
	failed atomic.Int64
}

type Stats struct {
	DeviceID uint32 `json:"device_id"`
	Sent     int64  `json:"sent"`
	Failed   int64  `json:"failed"`
}

func New(deviceID uint32, addr string, interval time.Duration, rnd *rand.Rand, logger *zap.Logger) *Sensor {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano() + int64(deviceID)))
	}
	return &Sensor{
		deviceID: deviceID,
		addr:     addr,
		interval: interval,
		dht:      NewDHT(rnd),
		dialer:   net.Dialer{Timeout: 5 * time.Second},
		logger:   logger.With(zap.Uint32("device_id", deviceID)),
	}
}

// Next takes a sample. Event ids start at zero and grow by one per sample,
// whether or not the sample is delivered.
func (s *Sensor) Next(now time.Time) domain.Reading {
	r := domain.Reading{
		DeviceID:    s.deviceID,
		EventID:     s.eventID,
		Humidity:    s.dht.Humidity(),
		Temperature: s.dht.Temperature(),
		ReadTime:    now.UTC(),
	}
	s.eventID++
	return r
}

// Send delivers one reading over a fresh connection.
func (s *Sensor) Send(ctx context.Context, r domain.Reading) error {
	conn, err := s.dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	return protocol.WriteFrame(conn, protocol.MarshalReading(r))
}

// Run samples and sends once per interval until ctx is cancelled. Delivery
// failures are logged and the sensor carries on.
func (s *Sensor) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sensor stopped", zap.Int64("sent", s.sent.Load()), zap.Int64("failed", s.failed.Load()))
			return
		case now := <-ticker.C:
			r := s.Next(now)
			if err := s.Send(ctx, r); err != nil {
				if ctx.Err() != nil {
					continue
				}
				s.failed.Add(1)
				s.logger.Warn("connection error", zap.Uint64("event_id", r.EventID), zap.Error(err))
				continue
			}
			s.sent.Add(1)
			s.logger.Debug("reading sent",
				zap.Uint64("event_id", r.EventID),
				zap.Float32("humidity", r.Humidity),
				zap.Float32("temperature", r.Temperature),
			)
		}
	}
}

func (s *Sensor) Stats() Stats {
	return Stats{
		DeviceID: s.deviceID,
		Sent:     s.sent.Load(),
		Failed:   s.failed.Load(),
	}
}
