package cache

import (
	"context"
	"sync"

	"github.com/TemirB/sensor-relay/internal/domain"

	lru "github.com/hashicorp/golang-lru/v2"
)

//go:generate mockgen -source internal/cache/cache.go -destination=internal/cache/cache_mock_test.go -package=cache

type repo interface {
	LatestByDevice(ctx context.Context, deviceID uint32) (*domain.Reading, error)
	RecentDeviceIDs(ctx context.Context, limit int) ([]uint32, error)
}

// Cache holds the latest reading of the most recently active devices.
type Cache struct {
	size int
	mu   sync.Mutex
	lru  *lru.Cache[uint32, domain.Reading]
}

func New(size int) (*Cache, error) {
	c, err := lru.New[uint32, domain.Reading](size)
	if err != nil {
		return nil, err
	}
	return &Cache{
		size: size,
		lru:  c,
	}, nil
}

// Warm loads the latest reading of recently active devices. Repository
// errors are skipped; a cold cache only costs database lookups.
func (c *Cache) Warm(ctx context.Context, repo repo) int {
	ids, err := repo.RecentDeviceIDs(ctx, c.size)
	if err != nil {
		return 0
	}
	loaded := 0
	for _, id := range ids {
		if r, err := repo.LatestByDevice(ctx, id); err == nil {
			c.Set(r)
			loaded++
		}
	}
	return loaded
}

func (c *Cache) Get(deviceID uint32) (*domain.Reading, bool) {
	r, ok := c.lru.Get(deviceID)
	if !ok {
		return nil, false
	}
	return &r, true
}

// Set stores r unless the cache already holds a newer reading for the same
// device; workers may finish stores out of order.
func (c *Cache) Set(r *domain.Reading) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.lru.Peek(r.DeviceID); ok && !r.NewerThan(cur) {
		return
	}
	c.lru.Add(r.DeviceID, *r)
}

func (c *Cache) Len() int { return c.lru.Len() }
