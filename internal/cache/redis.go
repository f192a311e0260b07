// Package cache keeps recent search results in Redis. Entries are keyed by a
// generation counter; bumping the counter after a store write makes every
// older entry unreachable without scanning keys.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joseph-ayodele/catalogue-search/internal/common"
	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

const (
	keyPrefix     = "catalogue:search"
	generationKey = keyPrefix + ":gen"
)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(cfg common.CacheConfig, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return &RedisCache{client: rdb, ttl: ttl, logger: logger}
}

// Get returns the cached result for query along with the key it was looked
// up under. A miss is (key, nil, false, nil); results computed after a miss
// must be stored with Set under that same key so an Invalidate in between
// leaves them unreachable.
func (c *RedisCache) Get(ctx context.Context, query string) (string, []entity.ProductRecord, bool, error) {
	key, err := c.key(ctx, query)
	if err != nil {
		return "", nil, false, err
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return key, nil, false, nil
	}
	if err != nil {
		return key, nil, false, fmt.Errorf("cache get: %w", err)
	}
	var records []entity.ProductRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		c.logger.Warn("cache.entry.corrupt", "key", key, "error", err)
		return key, nil, false, nil
	}
	return key, records, true, nil
}

// Set stores records under a key previously returned by Get.
func (c *RedisCache) Set(ctx context.Context, key string, records []entity.ProductRecord) error {
	if key == "" {
		return nil
	}
	if records == nil {
		records = []entity.ProductRecord{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate drops every cached result by moving to a new generation.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	gen, err := c.client.Incr(ctx, generationKey).Result()
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	c.logger.Debug("cache.invalidated", "generation", gen)
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(ctx context.Context, query string) (string, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("cache generation: %w", err)
	}
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return fmt.Sprintf("%s:%d:%s", keyPrefix, gen, hex.EncodeToString(sum[:])), nil
}
