package redis

import (
	"context"
	"fmt"
	"time"

	"healthindex/internal/common/config"

	"github.com/go-redis/redis/v8"
)

// Client Redis客户端类型别名
type Client = redis.Client

// defaultDialTimeout 启动探测使用的连接超时
const defaultDialTimeout = 3 * time.Second

// NewRedisClient 创建Redis客户端（不发起连接）
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: defaultDialTimeout,
	})
}

// Connect 创建客户端并 Ping，失败时关闭客户端并返回错误
func Connect(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := NewRedisClient(cfg)

	pingCtx, cancel := context.WithTimeout(ctx, defaultDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Close 关闭Redis连接（nil 安全）
func Close(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
