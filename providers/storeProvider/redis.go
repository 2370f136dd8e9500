package storeprovider

import (
	"context"
	"inventory/models"
	"inventory/providers"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each document as a plain string value without expiry.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) providers.KVStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read key %s", key)
	}
	return b, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to write key %s", key)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return errors.Wrapf(err, "failed to delete key %s", key)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
