package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const authzTTL = 30 * time.Second

// AuthzCache caches per-user authorized-ID sets in Redis. Entries expire
// quickly and are dropped on relationship mutations; a miss just means the
// engine recomputes from the store, so cache failures are logged and
// swallowed.
type AuthzCache struct {
	rdb *redis.Client
}

// NewAuthzCache creates and pings a Redis-backed cache.
func NewAuthzCache(ctx context.Context, addr, password string) (*AuthzCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &AuthzCache{rdb: rdb}, nil
}

func (c *AuthzCache) Get(ctx context.Context, subjectID uuid.UUID) ([]uuid.UUID, bool) {
	raw, err := c.rdb.Get(ctx, key(subjectID)).Bytes()
	if err != nil {
		return nil, false
	}

	var ids []uuid.UUID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, false
	}
	return ids, true
}

func (c *AuthzCache) Set(ctx context.Context, subjectID uuid.UUID, ids []uuid.UUID) {
	raw, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(subjectID), raw, authzTTL).Err(); err != nil {
		slog.Warn("authz cache set failed", "error", err)
	}
}

func (c *AuthzCache) Invalidate(ctx context.Context, subjectIDs ...uuid.UUID) {
	keys := make([]string, 0, len(subjectIDs))
	for _, id := range subjectIDs {
		keys = append(keys, key(id))
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("authz cache invalidate failed", "error", err)
	}
}

func (c *AuthzCache) Close() error {
	return c.rdb.Close()
}

func key(id uuid.UUID) string {
	return "authz:" + id.String()
}
