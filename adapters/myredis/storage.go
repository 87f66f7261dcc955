package myredis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"id5multiplexing/helpers"
	"id5multiplexing/interfaces"
	"id5multiplexing/storage"

	"github.com/go-redis/redis/v8"
)

const defaultTimeout = 2 * time.Second

var _ interfaces.StorageApi = (*redisStorage)(nil)

// redisStorage is a StorageApi whose items live in redis under "prefix:key".
// A window's origin storage maps onto one prefix, so windows sharing an origin share items.
type redisStorage struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// NewStorage creates redis implementation of interfaces.StorageApi. Panics on nil client or empty prefix.
//
// Called from cmd/id5page for every window when REDIS_ADDR is set.
func NewStorage(client redis.UniversalClient, prefix string) interfaces.StorageApi {
	return &redisStorage{
		client:  helpers.NilPanic(client, "myredis.storage.go: redis client is required"),
		prefix:  helpers.StrPanic(prefix, "myredis.storage.go: prefix is required"),
		timeout: defaultTimeout,
	}
}

func (r *redisStorage) GetItem(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	v, err := r.client.Get(ctx, r.generateKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("can't read key '%s' from redis, err: %w", key, err)
	}
	return v, nil
}

func (r *redisStorage) SetItem(key string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.client.Set(ctx, r.generateKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("can't write key '%s' to redis, err: %w", key, err)
	}
	return nil
}

func (r *redisStorage) RemoveItem(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.client.Del(ctx, r.generateKey(key)).Err(); err != nil {
		return fmt.Errorf("can't delete key '%s' from redis, err: %w", key, err)
	}
	return nil
}

func (r *redisStorage) generateKey(key string) string {
	return r.prefix + ":" + key
}
