// Package cache provides a Redis-backed byte cache for rendered
// invoice documents, so repeated downloads skip artifact storage.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/buildium/backend/internal/infrastructure/config"
)

// ArtifactCache caches rendered document bytes keyed by artifact
// reference. All operations degrade to a miss on Redis errors; the
// caller always has storage as the source of truth.
type ArtifactCache struct {
	client     *redis.Client
	ownsClient bool
	ttl        time.Duration
	logger     *zap.Logger
}

// NewArtifactCache connects to Redis using the given configuration.
func NewArtifactCache(cfg config.RedisConfig, logger *zap.Logger) (*ArtifactCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArtifactCache{
		client:     client,
		ownsClient: true,
		ttl:        cfg.TTL,
		logger:     logger,
	}, nil
}

// NewArtifactCacheWithClient wraps an existing Redis client.
// The caller retains ownership of the client.
func NewArtifactCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ArtifactCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArtifactCache{client: client, ttl: ttl, logger: logger}
}

func cacheKey(ref string) string {
	return "artifact:" + ref
}

// Get returns the cached bytes for a reference, or (nil, false) on a
// miss or any Redis error.
func (c *ArtifactCache) Get(ctx context.Context, ref string) ([]byte, bool) {
	data, err := c.client.Get(ctx, cacheKey(ref)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Artifact cache read failed", zap.String("ref", ref), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

// Set stores the bytes under the reference with the configured TTL.
// Failures are logged, never surfaced.
func (c *ArtifactCache) Set(ctx context.Context, ref string, data []byte) {
	if err := c.client.Set(ctx, cacheKey(ref), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Artifact cache write failed", zap.String("ref", ref), zap.Error(err))
	}
}

// Invalidate drops a cached artifact, used after regeneration.
func (c *ArtifactCache) Invalidate(ctx context.Context, ref string) {
	if err := c.client.Del(ctx, cacheKey(ref)).Err(); err != nil {
		c.logger.Warn("Artifact cache invalidation failed", zap.String("ref", ref), zap.Error(err))
	}
}

// Close releases the Redis connection when this cache owns it.
func (c *ArtifactCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}
