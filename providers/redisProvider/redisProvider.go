package redisprovider

import (
	"context"
	"inventory/providers"

	"github.com/redis/go-redis/v9"
)

type RedisDbProvider struct {
	client *redis.Client
}

func NewRedisProvider(addr string) providers.RedisProvider {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	return &RedisDbProvider{
		client: rdb,
	}
}

func (r *RedisDbProvider) Client() *redis.Client {
	return r.client
}

func (r *RedisDbProvider) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisDbProvider) Close() error {
	return r.client.Close()
}
