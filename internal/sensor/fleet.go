package sensor

import (
	"context"
	"sync"
	"time"

	"github.com/TemirB/sensor-relay/internal/config"
	"go.uber.org/zap"
)

// Fleet runs Count sensors with consecutive device ids.
type Fleet struct {
	sensors []*Sensor
	logger  *zap.Logger
}

func NewFleet(cfg config.Sensor, logger *zap.Logger) *Fleet {
	f := &Fleet{logger: logger}
	for i := 0; i < cfg.Count; i++ {
		id := cfg.DeviceID + uint32(i)
		f.sensors = append(f.sensors, New(id, cfg.RelayAddr, cfg.Interval, nil, logger))
	}
	return f
}

// Run blocks until ctx is cancelled and every sensor has stopped.
func (f *Fleet) Run(ctx context.Context) {
	start := time.Now()
	f.logger.Info("starting sensors", zap.Int("count", len(f.sensors)))

	var wg sync.WaitGroup
	for _, s := range f.sensors {
		wg.Add(1)
		go func(s *Sensor) {
			defer wg.Done()
			s.Run(ctx)
		}(s)
	}
	wg.Wait()

	var sent int64
	for _, s := range f.sensors {
		sent += s.Stats().Sent
	}
	f.logger.Info("sensors stopped", zap.Int64("total_sent", sent), zap.Duration("uptime", time.Since(start)))
}

func (f *Fleet) Stats() []Stats {
	out := make([]Stats, len(f.sensors))
	for i, s := range f.sensors {
		out[i] = s.Stats()
	}
	return out
}
