package service

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const awardGuardKeyPrefix = "award_guard:"

// AwardGuard 冷却期内的重复发放拦截
type AwardGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type RedisAwardGuard struct {
	Redis *redis.Client
}

func NewRedisAwardGuard(rdb *redis.Client) *RedisAwardGuard {
	return &RedisAwardGuard{Redis: rdb}
}

// Acquire 键不存在时写入并返回 true；已存在说明仍在冷却期
func (g *RedisAwardGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return g.Redis.SetNX(ctx, awardGuardKeyPrefix+key, time.Now().Unix(), ttl).Result()
}

func (g *RedisAwardGuard) Release(ctx context.Context, key string) error {
	return g.Redis.Del(ctx, awardGuardKeyPrefix+key).Err()
}
