package results

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const summaryKeyPrefix = "results:election:"

// Cache holds projected summaries for their TTL. Implementations treat every
// failure as a miss; the caller never fails a read because the cache did.
type Cache interface {
	Get(ctx context.Context, electionID string) (*Summary, error)
	Set(ctx context.Context, summary *Summary) error
	Invalidate(ctx context.Context, electionID string) error
}

// RedisCache is a Redis-backed summary cache shared across instances. The TTL
// bounds how stale a served projection can be while an election is still
// receiving approved views.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached summary, or nil on a miss.
func (c *RedisCache) Get(ctx context.Context, electionID string) (*Summary, error) {
	payload, err := c.client.Get(ctx, summaryKeyPrefix+electionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var summary Summary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *RedisCache) Set(ctx context.Context, summary *Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, summaryKeyPrefix+summary.ElectionID, payload, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, electionID string) error {
	return c.client.Del(ctx, summaryKeyPrefix+electionID).Err()
}
