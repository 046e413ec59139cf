package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"leadgen-service/internal/app"
	"leadgen-service/internal/domain"
)

const defaultContentKey = "leadgen:content"

// ContentCache shares loaded site content between instances and falls back
// to the loader on a miss:
//
//	GET {key}               -> JSON encoded domain.ContentSeed
//	SET {key} <json> EX ttl on fill
type ContentCache struct {
	client *redis.Client
	loader app.ContentLoader
	key    string
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewContentCache(client *redis.Client, loader app.ContentLoader, ttl time.Duration) *ContentCache {
	return &ContentCache{
		client: client,
		loader: loader,
		key:    defaultContentKey,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ContentCache) LoadContent(ctx context.Context) (domain.ContentSeed, error) {
	if seed, ok := c.cached(ctx); ok {
		return seed, nil
	}

	result, err, _ := c.sf.Do(c.key, func() (interface{}, error) {
		// Re-check in case another instance filled it.
		if seed, ok := c.cached(ctx); ok {
			return seed, nil
		}
		seed, err := c.loader.LoadContent(ctx)
		if err != nil {
			return domain.ContentSeed{}, err
		}
		if payload, err := json.Marshal(seed); err == nil {
			// A failed fill only costs the next caller a load.
			_ = c.client.Set(ctx, c.key, payload, c.ttlWithJitter()).Err()
		}
		return seed, nil
	})
	if err != nil {
		return domain.ContentSeed{}, err
	}
	return result.(domain.ContentSeed), nil
}

// Invalidate drops the shared copy so the next load reads the source.
func (c *ContentCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}

func (c *ContentCache) cached(ctx context.Context) (domain.ContentSeed, bool) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		// redis.Nil is a plain miss; other errors degrade to the loader.
		return domain.ContentSeed{}, false
	}
	var seed domain.ContentSeed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return domain.ContentSeed{}, false
	}
	return seed, true
}

func (c *ContentCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
