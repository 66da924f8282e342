// Package cache provides a Redis-backed cache for mastery snapshots.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/mastery"
)

const keyPrefix = "studyloop:mastery:"

// Cache wraps a Redis client.
type Cache struct {
	Client *redis.Client
	ttl    time.Duration
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// New creates a new cache client. Entries expire after ttl; zero keeps
// them until invalidated.
func New(ctx context.Context, url string, ttl time.Duration) (*Cache, error) {
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	c := &Cache{Client: redis.NewClient(opts), ttl: ttl}
	if err := c.HealthCheck(ctx); err != nil {
		c.Client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}
	return c, nil
}

// Close shuts down the cache client.
func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck verifies the cache connection is alive.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// Key returns the cache key of a user's brick.
func Key(user ids.UserID, brick ids.BrickRef) string {
	return keyPrefix + string(user) + ":" + brick.String()
}

// GetMastery returns the cached snapshot, reporting false on a miss.
func (c *Cache) GetMastery(ctx context.Context, user ids.UserID, brick ids.BrickRef) (mastery.BrickMastery, bool, error) {
	raw, err := c.Client.Get(ctx, Key(user, brick)).Bytes()
	if errors.Is(err, redis.Nil) {
		return mastery.BrickMastery{}, false, nil
	}
	if err != nil {
		return mastery.BrickMastery{}, false, fmt.Errorf("cache get %s: %w", brick, err)
	}
	bm, err := Decode(raw)
	if err != nil {
		return mastery.BrickMastery{}, false, err
	}
	return bm, true, nil
}

// SetMastery stores a snapshot.
func (c *Cache) SetMastery(ctx context.Context, user ids.UserID, brick ids.BrickRef, bm mastery.BrickMastery) error {
	raw, err := Encode(bm)
	if err != nil {
		return err
	}
	if err := c.Client.Set(ctx, Key(user, brick), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", brick, err)
	}
	return nil
}

// InvalidateMastery drops a cached snapshot.
func (c *Cache) InvalidateMastery(ctx context.Context, user ids.UserID, brick ids.BrickRef) error {
	if err := c.Client.Del(ctx, Key(user, brick)).Err(); err != nil {
		return fmt.Errorf("cache del %s: %w", brick, err)
	}
	return nil
}

// Encode serializes a snapshot for storage.
func Encode(bm mastery.BrickMastery) ([]byte, error) {
	raw, err := json.Marshal(bm)
	if err != nil {
		return nil, fmt.Errorf("encode mastery: %w", err)
	}
	return raw, nil
}

// Decode parses a stored snapshot.
func Decode(raw []byte) (mastery.BrickMastery, error) {
	var bm mastery.BrickMastery
	if err := json.Unmarshal(raw, &bm); err != nil {
		return bm, fmt.Errorf("decode mastery: %w", err)
	}
	return bm, nil
}
