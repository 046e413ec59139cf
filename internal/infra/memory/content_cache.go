package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"leadgen-service/internal/app"
	"leadgen-service/internal/domain"
)

// CachedContentLoader keeps the last seed for a TTL to avoid hitting the
// backing source on every reload.
type CachedContentLoader struct {
	loader app.ContentLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	seed      domain.ContentSeed
	expiresAt time.Time
}

func NewCachedContentLoader(loader app.ContentLoader, ttl time.Duration) *CachedContentLoader {
	return &CachedContentLoader{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CachedContentLoader) LoadContent(ctx context.Context) (domain.ContentSeed, error) {
	if seed, ok := c.cached(c.clock()); ok {
		return seed, nil
	}

	result, err, _ := c.sf.Do("content", func() (interface{}, error) {
		now := c.clock()
		if seed, ok := c.cached(now); ok {
			return seed, nil
		}
		seed, err := c.loader.LoadContent(ctx)
		if err != nil {
			return domain.ContentSeed{}, err
		}
		expiresAt := now.Add(c.ttlWithJitter())
		c.mu.Lock()
		c.seed = seed
		c.expiresAt = expiresAt
		c.mu.Unlock()
		return seed, nil
	})
	if err != nil {
		return domain.ContentSeed{}, err
	}
	return result.(domain.ContentSeed), nil
}

func (c *CachedContentLoader) cached(now time.Time) (domain.ContentSeed, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.expiresAt.After(now) {
		return c.seed, true
	}
	return domain.ContentSeed{}, false
}

// ttlWithJitter adds up to 10% so instances sharing a source drift apart.
// Only called inside the singleflight, which serializes access to rnd.
func (c *CachedContentLoader) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
