package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// CachedStore layers read-through redis caching over a RecordStore.
// Cache failures are logged and fall through to the inner store, so a
// degraded redis costs latency, never correctness. Writes invalidate
// the affected keys after the inner store commits.
type CachedStore struct {
	inner RecordStore
	redis *redis.Client
	ttl   map[string]time.Duration
	log   *logrus.Logger
}

// NewCachedStore connects to redis and wraps the given store. The
// connection is verified before the decorator is returned.
func NewCachedStore(inner RecordStore, redisAddr, redisPassword string, log *logrus.Logger) (*CachedStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if log == nil {
		log = logrus.New()
	}

	return &CachedStore{
		inner: inner,
		redis: client,
		ttl: map[string]time.Duration{
			"pins":     5 * time.Minute,
			"setting":  15 * time.Minute,
			"settings": 5 * time.Minute,
		},
		log: log,
	}, nil
}

func (c *CachedStore) GetPins(ctx context.Context, username string) ([]string, error) {
	cacheKey := "pins:" + username

	// Try cache first
	cached, err := c.redis.Get(ctx, cacheKey).Result()
	if err == nil {
		var appIDs []string
		if err := json.Unmarshal([]byte(cached), &appIDs); err == nil {
			return appIDs, nil
		}
		// Corrupted entry, drop it and fall through
		c.redis.Del(ctx, cacheKey)
	} else if err != redis.Nil {
		c.log.Warnf("Redis get failed for %s: %v", cacheKey, err)
	}

	// Cache miss - fetch from the record store
	appIDs, err := c.inner.GetPins(ctx, username)
	if err != nil {
		return nil, err
	}

	// Store in cache
	if data, err := json.Marshal(appIDs); err == nil {
		c.redis.Set(ctx, cacheKey, data, c.ttl["pins"])
	}

	return appIDs, nil
}

func (c *CachedStore) SetPins(ctx context.Context, username string, appIDs []string) error {
	if err := c.inner.SetPins(ctx, username, appIDs); err != nil {
		return err
	}

	c.redis.Del(ctx, "pins:"+username)
	return nil
}

func (c *CachedStore) GetSetting(ctx context.Context, key string) (string, error) {
	cacheKey := "setting:" + key

	// Try cache first
	cached, err := c.redis.Get(ctx, cacheKey).Result()
	if err == nil {
		return cached, nil
	} else if err != redis.Nil {
		c.log.Warnf("Redis get failed for %s: %v", cacheKey, err)
	}

	// Cache miss - fetch from the record store
	value, err := c.inner.GetSetting(ctx, key)
	if err != nil {
		return "", err
	}

	// Store in cache
	c.redis.Set(ctx, cacheKey, value, c.ttl["setting"])

	return value, nil
}

func (c *CachedStore) SetSetting(ctx context.Context, key, value string) error {
	if err := c.inner.SetSetting(ctx, key, value); err != nil {
		return err
	}

	c.redis.Del(ctx, "setting:"+key, "settings:all")
	return nil
}

func (c *CachedStore) AllSettings(ctx context.Context) (map[string]string, error) {
	cacheKey := "settings:all"

	// Try cache first
	cached, err := c.redis.Get(ctx, cacheKey).Result()
	if err == nil {
		var settings map[string]string
		if err := json.Unmarshal([]byte(cached), &settings); err == nil {
			return settings, nil
		}
		c.redis.Del(ctx, cacheKey)
	} else if err != redis.Nil {
		c.log.Warnf("Redis get failed for %s: %v", cacheKey, err)
	}

	// Cache miss - fetch from the record store
	settings, err := c.inner.AllSettings(ctx)
	if err != nil {
		return nil, err
	}

	// Store in cache
	if data, err := json.Marshal(settings); err == nil {
		c.redis.Set(ctx, cacheKey, data, c.ttl["settings"])
	}

	return settings, nil
}

// Ping reports healthy only when both the inner store and redis respond.
func (c *CachedStore) Ping(ctx context.Context) error {
	if err := c.inner.Ping(ctx); err != nil {
		return err
	}

	if err := c.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unhealthy: %w", err)
	}

	return nil
}

func (c *CachedStore) Close() error {
	if err := c.redis.Close(); err != nil {
		c.log.Warnf("Failed to close redis client: %v", err)
	}
	return c.inner.Close()
}
