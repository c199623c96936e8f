package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"omninet-lottery/backend/config"
)

// Client Redis 客户端封装
// 用于会话 Token 黑名单与认证接口限流
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// Wrap 包装已有连接（测试使用）
func Wrap(rdb *goredis.Client, logger *zap.Logger) *Client {
	return &Client{rdb: rdb, logger: logger}
}

// ── Token 黑名单 ──

const blacklistPrefix = "session:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 限流 ──

const rateLimitPrefix = "ratelimit:"

// CheckRateLimit 基于有序集合的滑动窗口限流，返回本次请求是否放行
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return false, nil
	}

	now := time.Now()
	redisKey := rateLimitPrefix + key
	cutoff := float64(now.Add(-window).UnixMilli())

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprintf("(%f", cutoff))
	pipe.ZAdd(ctx, redisKey, goredis.Z{
		Score:  float64(now.UnixMilli()),
		Member: uuid.NewString(),
	})
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window*2)

	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("限流计数失败", zap.String("key", key), zap.Error(err))
		return false, err
	}

	return countCmd.Val() <= int64(limit), nil
}

// HealthCheck 执行 PING
func (c *Client) HealthCheck(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return goredis.ErrClosed
	}
	return c.rdb.Ping(ctx).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
