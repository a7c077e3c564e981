package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/chango-api/internal/resilience"
)

// Cache wraps Redis helpers for JSON payloads. A nil client or a non-positive
// TTL disables it; every method then behaves as a miss.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	guard  *resilience.Breaker
}

// New constructs a cache helper. Keys are stored under prefix.
func New(client *redis.Client, ttl time.Duration, prefix string) *Cache {
	return &Cache{client: client, ttl: ttl, prefix: prefix}
}

// WithBreaker routes Redis calls through b. While b is open every call fails fast
// with resilience.ErrOpenCircuit.
func (c *Cache) WithBreaker(b *resilience.Breaker) *Cache {
	c.guard = b
	return c
}

// Enabled reports whether reads and writes reach Redis.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// GetJSON unmarshals a cached JSON payload into dst. It reports whether the key existed.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if !c.Enabled() || key == "" {
		return false, nil
	}
	var data []byte
	err := c.guard.Do(ctx, func(ctx context.Context) error {
		var err error
		data, err = c.client.Get(ctx, c.prefix+key).Bytes()
		return err
	}, redis.Nil)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON serialises v as JSON and stores it with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if !c.Enabled() || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.guard.Do(ctx, func(ctx context.Context) error {
		return c.client.Set(ctx, c.prefix+key, data, c.ttl).Err()
	})
}

// Ping checks connectivity for readiness probes.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("redis not configured")
	}
	return c.client.Ping(ctx).Err()
}

// Key joins non-empty parts with ':'.
func Key(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ":")
}
