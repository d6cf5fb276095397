package database

import (
	"context"
	"fmt"
	"lingua_edu_backend/internal/config"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// InitRedis 仅在 redis.enabled 时调用；积分冷却去重依赖它
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", rdb.Options().Addr, err)
	}

	log.Println("Redis connection established")
	return rdb, nil
}
