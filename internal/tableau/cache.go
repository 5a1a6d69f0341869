package tableau

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores complete tables in Redis, one key per commune and exercice.
// It is best effort: lookup and store failures degrade to a rebuild, never
// to a request failure. It also serves as the invalidation hook the
// financial-data writes call after every mutation.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

const cacheVersionKey = "tableau:version"

func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// version returns the current cache generation, initialising when missing.
// Version bumps invalidate every cached table at once; targeted writes use
// Invalidate instead.
func (c *Cache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

func (c *Cache) cleTableau(ctx context.Context, communeID, exerciceID int64) (string, error) {
	ver, err := c.version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("tableau:complet:%d:%d:%d", communeID, exerciceID, ver), nil
}

func (c *Cache) GetComplet(ctx context.Context, communeID, exerciceID int64) (*TableauComplet, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	key, err := c.cleTableau(ctx, communeID, exerciceID)
	if err != nil {
		c.logger.Warn("tableau cache version read failed", "error", err)
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("tableau cache read failed", "error", err)
		}
		return nil, false
	}
	var t TableauComplet
	if err := json.Unmarshal(raw, &t); err != nil {
		c.logger.Warn("tableau cache entry corrupt, dropping", "error", err)
		c.client.Del(ctx, key)
		return nil, false
	}
	return &t, true
}

func (c *Cache) SetComplet(ctx context.Context, t *TableauComplet) {
	if c == nil || c.client == nil || t == nil {
		return
	}
	raw, err := json.Marshal(t)
	if err != nil {
		c.logger.Warn("tableau cache encode failed", "error", err)
		return
	}
	key, err := c.cleTableau(ctx, t.CommuneID, t.ExerciceID)
	if err != nil {
		c.logger.Warn("tableau cache version read failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("tableau cache write failed", "error", err)
	}
}

// Invalidate drops the cached table for one commune and exercice.
func (c *Cache) Invalidate(ctx context.Context, communeID, exerciceID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	key, err := c.cleTableau(ctx, communeID, exerciceID)
	if err != nil {
		return err
	}
	return c.client.Del(ctx, key).Err()
}

// Bump invalidates every cached table by incrementing the cache generation.
// Chart-of-accounts changes and exercice close/reopen affect tables across
// communes, so a targeted delete does not suffice.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}
