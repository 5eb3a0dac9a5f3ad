package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

const (
	ResourcesKey   = "calendar:resources"
	AllSlotsPrefix = "calendar:slots:"

	scanBatchSize = 200
)

// SlotsKey addresses the available-slot listing of one doctor, day and duration.
func SlotsKey(doctorID, date string, duration int) string {
	return fmt.Sprintf("%s%s:%s:%d", AllSlotsPrefix, doctorID, date, duration)
}

// SlotsPrefix matches every cached slot listing of a doctor.
func SlotsPrefix(doctorID string) string {
	return AllSlotsPrefix + doctorID + ":"
}

// Cache stores JSON values under a key with a TTL.
type Cache interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, prefix string) error
}

type redisCache struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewRedisCache(client *redis.Client, log *logrus.Logger) Cache {
	return &redisCache{client: client, log: log}
}

func (c *redisCache) Get(ctx context.Context, key string, dst any) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// A value written by an older layout is treated as absent.
		c.log.Warnf("Dropping undecodable cache entry %s: %+v", key, err)
		c.client.Del(ctx, key)
		return ErrMiss
	}
	c.log.Debugf("cache hit %s", key)
	return nil
}

func (c *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Invalidate deletes every key starting with prefix. SCAN keeps Redis responsive on
// large keyspaces.
func (c *redisCache) Invalidate(ctx context.Context, prefix string) error {
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("cache scan %s: %w", prefix, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache invalidate %s: %w", prefix, err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		c.log.Debugf("Invalidated %d cache entries under %s", deleted, prefix)
	}
	return nil
}
