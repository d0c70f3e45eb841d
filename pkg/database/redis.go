package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"quizhub_backend/internal/config"

	"github.com/go-redis/redis/v8"
)

// InitRedis 初始化Redis连接，作答页测验缓存依赖此客户端
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	log.Println("Redis connection established")
	return rdb, nil
}
