package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps each collection as a single string key.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) key(name string) string {
	return b.prefix + name
}

func (b *RedisBackend) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func (b *RedisBackend) Save(ctx context.Context, name string, data []byte) error {
	return b.client.Set(ctx, b.key(name), data, 0).Err()
}

// Ping reports whether Redis is reachable.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
