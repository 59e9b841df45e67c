// tokenstore/redis.go
package tokenstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces credential keys in a shared Redis.
const DefaultRedisPrefix = "rxclient:"

// RedisStorage keeps values in Redis so several processes or hosts share one session.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage wraps an existing client. An empty prefix selects DefaultRedisPrefix.
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStorage{client: client, prefix: prefix}
}

// NewRedisStorageFromURL parses a redis:// URL and returns a storage over a new client.
func NewRedisStorageFromURL(rawURL, prefix string) (*RedisStorage, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return NewRedisStorage(redis.NewClient(opts), prefix), nil
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

// SetValues writes every key inside one MULTI/EXEC so readers never observe a mix of
// old and new values.
func (r *RedisStorage) SetValues(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, r.prefix+k, v, 0)
		}
		return nil
	})
	return err
}

func (r *RedisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.prefix + k
	}
	return r.client.Del(ctx, prefixed...).Err()
}

// Ping checks connectivity.
func (r *RedisStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *RedisStorage) Close() error {
	return r.client.Close()
}
