package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// UnlockCache caches unlock grants. Grants never expire or get revoked, so
// entries are written without a TTL and a positive hit is always valid. The
// grant store stays the source of truth; misses and errors fall through to
// it. Key format: unlock:<professional_id>:<client_id>
type UnlockCache struct {
	client *redis.Client
}

// NewUnlockCache creates an UnlockCache wrapping the given Redis client.
func NewUnlockCache(client *redis.Client) *UnlockCache {
	return &UnlockCache{client: client}
}

// Has reports whether the pair's grant is cached.
func (c *UnlockCache) Has(ctx context.Context, professionalID, clientID string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(professionalID, clientID)).Result()
	if err != nil {
		return false, fmt.Errorf("unlock cache check: %w", err)
	}
	return n > 0, nil
}

// Set records the pair's grant permanently.
func (c *UnlockCache) Set(ctx context.Context, professionalID, clientID string) error {
	return c.client.Set(ctx, c.key(professionalID, clientID), "1", 0).Err()
}

func (c *UnlockCache) key(professionalID, clientID string) string {
	return fmt.Sprintf("unlock:%s:%s", professionalID, clientID)
}
