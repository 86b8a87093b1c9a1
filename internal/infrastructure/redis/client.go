package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/streamsync/sync-worker/internal/config"
)

type Client interface {
	Ping(ctx context.Context) error
	Close() error
	RDB() *redis.Client
}

type redisClient struct {
	rdb *redis.Client
}

func NewClient(cfg config.RedisConfig) Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &redisClient{rdb: rdb}
}

func (c *redisClient) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *redisClient) Close() error {
	return c.rdb.Close()
}

func (c *redisClient) RDB() *redis.Client {
	return c.rdb
}
