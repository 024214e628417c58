package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// OwnerCache is a read-through cache for content owner ids. Ownership is
// resolved on every guarded write, so it is the hottest lookup in the
// system; the row itself never changes owner, which makes it safe to cache.
//
// A nil *OwnerCache is valid and means "no cache": every call falls through
// to the loader. Cache failures degrade to the loader too, they are never
// surfaced to the caller.
type OwnerCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewOwnerCache(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *OwnerCache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &OwnerCache{rdb: rdb, ttl: ttl, log: log}
}

func ownerKey(contentID int) string {
	return fmt.Sprintf("catalog:content:%d:owner", contentID)
}

// Owner returns the owner id for contentID, consulting the cache first and
// falling back to load on miss or cache error. Loader errors (including
// ErrNotFound) pass through unchanged and are never cached.
func (c *OwnerCache) Owner(ctx context.Context, contentID int, load func(context.Context, int) (int, error)) (int, error) {
	if c == nil {
		return load(ctx, contentID)
	}

	key := ownerKey(contentID)
	if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
		if owner, convErr := strconv.Atoi(raw); convErr == nil {
			return owner, nil
		}
		// Unparseable entry, drop it and reload.
		_ = c.rdb.Del(ctx, key).Err()
	} else if err != redis.Nil {
		c.log.Debug("owner cache read failed", "content_id", contentID, "error", err)
	}

	owner, err := load(ctx, contentID)
	if err != nil {
		return 0, err
	}
	if err := c.rdb.Set(ctx, key, strconv.Itoa(owner), c.ttl).Err(); err != nil {
		c.log.Debug("owner cache write failed", "content_id", contentID, "error", err)
	}
	return owner, nil
}

// Invalidate drops the cached owner for contentID. Called on delete so a
// recycled id can never inherit a stale owner.
func (c *OwnerCache) Invalidate(ctx context.Context, contentID int) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, ownerKey(contentID)).Err(); err != nil {
		c.log.Debug("owner cache invalidate failed", "content_id", contentID, "error", err)
	}
}
