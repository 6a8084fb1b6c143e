package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid reading")
)

// Readings must fall inside 0001-01-01..9999-12-31 UTC, the range both the
// wire timestamp and the database column can hold.
var (
	minReadTime = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	maxReadTime = time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Reading is one DHT sample sent by a sensor.
type Reading struct {
	DeviceID    uint32    `json:"device_id"`
	EventID     uint64    `json:"event_id"`
	Humidity    float32   `json:"humidity"`
	Temperature float32   `json:"temperature"`
	ReadTime    time.Time `json:"read_time"`
}

// Validate rejects samples the sensor could not have produced.
func (r Reading) Validate() error {
	if r.ReadTime.IsZero() {
		return fmt.Errorf("%w: read_time is required", ErrInvalid)
	}
	if r.ReadTime.Before(minReadTime) || !r.ReadTime.Before(maxReadTime) {
		return fmt.Errorf("%w: read_time out of range: %s", ErrInvalid, r.ReadTime)
	}
	if isBad(r.Humidity) || isBad(r.Temperature) {
		return fmt.Errorf("%w: non-finite measurement", ErrInvalid)
	}
	return nil
}

// NewerThan reports whether r should replace other as a device's latest reading.
func (r Reading) NewerThan(other Reading) bool {
	if r.ReadTime.Equal(other.ReadTime) {
		return r.EventID > other.EventID
	}
	return r.ReadTime.After(other.ReadTime)
}

func isBad(f float32) bool {
	v := float64(f)
	return math.IsNaN(v) || math.IsInf(v, 0)
}

type ReadingRepository interface {
	Insert(ctx context.Context, r *Reading) error
	LatestByDevice(ctx context.Context, deviceID uint32) (*Reading, error)
	History(ctx context.Context, deviceID uint32, limit int) ([]Reading, error)
	RecentDeviceIDs(ctx context.Context, limit int) ([]uint32, error)
}
