package fetcher

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"concord/internal/registry/models"
	id "concord/pkg/domain"
)

const cacheKeyPrefix = "registry:snapshot:"

// Cached decorates a Fetcher with a Redis snapshot cache. Cache failures
// degrade to the inner fetcher: a broken cache slows syncs down, it never
// fails them.
type Cached struct {
	inner  Fetcher
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCached(inner Fetcher, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cached {
	return &Cached{inner: inner, redis: client, ttl: ttl, logger: logger}
}

func (c *Cached) Fetch(ctx context.Context, registryID id.RegistryID) (*models.VerifierRegistry, error) {
	key := cacheKeyPrefix + string(registryID)

	payload, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		var registry models.VerifierRegistry
		if err := json.Unmarshal(payload, &registry); err == nil {
			return &registry, nil
		}
		// Corrupt entry: fall through to the source and overwrite it.
		if c.logger != nil {
			c.logger.WarnContext(ctx, "discarding corrupt registry cache entry", "registry_id", registryID)
		}
	} else if err != redis.Nil && c.logger != nil {
		c.logger.WarnContext(ctx, "registry cache read failed",
			"registry_id", registryID,
			"error", err,
		)
	}

	registry, err := c.inner.Fetch(ctx, registryID)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(registry); err == nil {
		if err := c.redis.Set(ctx, key, encoded, c.ttl).Err(); err != nil && c.logger != nil {
			c.logger.WarnContext(ctx, "registry cache write failed",
				"registry_id", registryID,
				"error", err,
			)
		}
	}
	return registry, nil
}

// Invalidate drops the cached snapshot for the registry.
func (c *Cached) Invalidate(ctx context.Context, registryID id.RegistryID) error {
	return c.redis.Del(ctx, cacheKeyPrefix+string(registryID)).Err()
}
