package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/techflow/techflow-backend/internal/metrics"
	"github.com/techflow/techflow-backend/pkg/kv"
	memkv "github.com/techflow/techflow-backend/pkg/kv/memory"
	"go.uber.org/zap"
)

// Cache fronts Redis when it is reachable and degrades to an in-memory
// kv.Store otherwise, so single-node deployments need no extra infra.
type Cache struct {
	client  *redis.Client
	kvStore kv.Store

	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

func NewCache(addr string, logger *zap.SugaredLogger, metrics *metrics.Metrics) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     "",
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if logger != nil {
			logger.Warnw("Redis unavailable; using in-memory cache", "error", err)
		}
		return &Cache{
			client:  nil,
			kvStore: memkv.New(time.Minute),
			logger:  logger,
			metrics: metrics,
		}, nil
	}

	return &Cache{
		client:  client,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Cache key prefixes
const (
	KeySession       = "web:session"
	KeyPostsPage     = "web:posts:page"
	KeyPostsVersion  = "web:posts:version"
	KeyCategoryStats = "web:posts:stats"
	KeySitemap       = "web:sitemap"
)

func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	// Redis mode
	if c.client != nil {
		val, err := c.client.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				if c.metrics != nil {
					c.metrics.RecordCacheMiss(ctx, key)
				}
				return ErrCacheMiss
			}
			if c.logger != nil {
				c.logger.Errorw("Cache get error", "key", key, "error", err)
			}
			return fmt.Errorf("cache get error: %w", err)
		}
		if c.metrics != nil {
			c.metrics.RecordCacheHit(ctx, key)
		}
		if err := json.Unmarshal([]byte(val), dest); err != nil {
			return fmt.Errorf("cache unmarshal error: %w", err)
		}
		return nil
	}

	// In-memory mode via kv.Store
	data, err := c.kvStore.Get(ctx, key)
	if err != nil {
		if err == kv.ErrNotFound {
			if c.metrics != nil {
				c.metrics.RecordCacheMiss(ctx, key)
			}
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get error: %w", err)
	}
	if c.metrics != nil {
		c.metrics.RecordCacheHit(ctx, key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if c.client != nil {
		if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
			if c.logger != nil {
				c.logger.Errorw("Cache set error", "key", key, "error", err)
			}
			return fmt.Errorf("cache set error: %w", err)
		}
		return nil
	}
	if err := c.kvStore.Set(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if c.client != nil {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			if c.logger != nil {
				c.logger.Errorw("Cache delete error", "keys", keys, "error", err)
			}
			return fmt.Errorf("cache delete error: %w", err)
		}
		return nil
	}
	if _, err := c.kvStore.Del(ctx, keys...); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if c.client != nil {
		count, err := c.client.Exists(ctx, key).Result()
		if err != nil {
			return false, fmt.Errorf("cache exists error: %w", err)
		}
		return count > 0, nil
	}
	count, err := c.kvStore.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("cache exists error: %w", err)
	}
	return count > 0, nil
}

// Incr atomically increments a counter key and returns the new value
func (c *Cache) Incr(ctx context.Context, key string) (int64, error) {
	if c.client != nil {
		val, err := c.client.Incr(ctx, key).Result()
		if err != nil {
			return 0, fmt.Errorf("cache incr error: %w", err)
		}
		return val, nil
	}
	val, err := c.kvStore.IncrBy(ctx, key, 1)
	if err != nil {
		return 0, fmt.Errorf("cache incr error: %w", err)
	}
	return val, nil
}

// GetCounter reads a counter key, returning 0 when it has never been set
func (c *Cache) GetCounter(ctx context.Context, key string) (int64, error) {
	if c.client != nil {
		val, err := c.client.Get(ctx, key).Int64()
		if err != nil {
			if err == redis.Nil {
				return 0, nil
			}
			return 0, fmt.Errorf("cache counter error: %w", err)
		}
		return val, nil
	}
	val, err := c.kvStore.IncrBy(ctx, key, 0)
	if err != nil {
		return 0, fmt.Errorf("cache counter error: %w", err)
	}
	return val, nil
}

// Session helpers

func (c *Cache) SetSession(ctx context.Context, token string, value interface{}, ttl time.Duration) error {
	return c.Set(ctx, fmt.Sprintf("%s:%s", KeySession, token), value, ttl)
}

func (c *Cache) GetSession(ctx context.Context, token string, dest interface{}) error {
	return c.Get(ctx, fmt.Sprintf("%s:%s", KeySession, token), dest)
}

func (c *Cache) DeleteSession(ctx context.Context, token string) error {
	return c.Delete(ctx, fmt.Sprintf("%s:%s", KeySession, token))
}

// IsInMemoryMode returns true if the cache is running in in-memory mode
func (c *Cache) IsInMemoryMode() bool {
	return c.client == nil
}

// Health check
func (c *Cache) Ping(ctx context.Context) error {
	if c.client != nil {
		return c.client.Ping(ctx).Err()
	}
	// In-memory mode considered healthy
	return nil
}

// Close connection
func (c *Cache) Close() error {
	var err error
	if c.client != nil {
		err = c.client.Close()
	}
	if c.kvStore != nil {
		if closeErr := c.kvStore.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}

// Error types
var (
	ErrCacheMiss = fmt.Errorf("cache miss")
)
