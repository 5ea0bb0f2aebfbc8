package database

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/divhit/cobs-bread-research/config"
)

// ConnectRedis opens a redis connection and verifies it with a ping.
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisFullAddr(),
		Password: cfg.RedisPassword,
		DB:       0,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	return client, nil
}
