package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/bcdannyboy/optval/batch"
	"github.com/redis/go-redis/v9"
	"github.com/xhhuango/json"
)

// Cache stores encoded pricing results by request key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// RedisCache is a Cache backed by Redis string keys with a fixed TTL.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: "optval:price:",
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get result from redis: %w", err)
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store result in redis: %w", err)
	}
	return nil
}

// cacheKey hashes the canonical encoding of a job and the defaults that
// complete it. The job ID does not take part.
func cacheKey(job batch.Job, d batch.Defaults) (string, error) {
	job.ID = ""
	data, err := json.Marshal(struct {
		Job      batch.Job      `json:"job"`
		Defaults batch.Defaults `json:"defaults"`
	}{job, d})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
