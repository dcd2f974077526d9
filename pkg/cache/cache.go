package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/multierr"

	"github.com/homegoods-vn/homegoods-backend/pkg/redis"
)

type redisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
	CacheKey(parts ...string) string
}

// Store is a small JSON read-through cache on top of Redis. Values are
// marshalled on write and unmarshalled on read; a miss is reported via the
// ok return, never as an error.
type Store struct {
	store redisStore
}

// NewStore wires the cache against the shared Redis client.
func NewStore(client *redis.Client) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Store{store: client}, nil
}

// Key builds a namespaced cache key for the given parts.
func (s *Store) Key(parts ...string) string {
	return s.store.CacheKey(parts...)
}

// Get loads the cached value for key into dest. ok is false on a miss.
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores value under key for ttl.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, string(payload), ttl); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// InvalidatePrefix removes every key under the given cache prefix. Deletion
// errors are combined so a single bad key does not hide the rest.
func (s *Store) InvalidatePrefix(ctx context.Context, prefix string) error {
	keys, err := s.store.ScanKeys(ctx, s.store.CacheKey(prefix, "*"))
	if err != nil {
		return fmt.Errorf("cache scan %s: %w", prefix, err)
	}

	var combined error
	for _, key := range keys {
		if err := s.store.Del(ctx, key); err != nil {
			combined = multierr.Append(combined, fmt.Errorf("cache del %s: %w", key, err))
		}
	}
	return combined
}
