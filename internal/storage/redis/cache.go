package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"whisperwall/backend/internal/domain"
)

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = fmt.Errorf("cache miss")

// Cache Redis 缓存实现
//
// 缓存公开资料查询结果，缓存不可用时上层直接回源存储，
// 不影响功能正确性。
type Cache struct {
	client *redis.Client
	ctx    context.Context
}

// NewCache 创建 Redis 缓存实例
func NewCache(addr, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 10,
	})

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{
		client: client,
		ctx:    ctx,
	}, nil
}

// ========== 公开资料缓存 ==========

// CacheProfile 缓存公开资料
func (c *Cache) CacheProfile(key string, profile *domain.PublicProfile, ttl time.Duration) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return c.client.Set(c.ctx, profileKey(key), data, ttl).Err()
}

// GetCachedProfile 获取缓存的公开资料
func (c *Cache) GetCachedProfile(key string) (*domain.PublicProfile, error) {
	data, err := c.client.Get(c.ctx, profileKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var profile domain.PublicProfile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// DeleteCachedProfile 删除缓存的公开资料（资料变更时失效）
func (c *Cache) DeleteCachedProfile(key string) error {
	return c.client.Del(c.ctx, profileKey(key)).Err()
}

func profileKey(key string) string {
	return fmt.Sprintf("profile:%s", key)
}

// ========== 工具方法 ==========

// Health 健康检查
func (c *Cache) Health() error {
	ctx, cancel := context.WithTimeout(c.ctx, 2*time.Second)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

// Close 关闭 Redis 连接
func (c *Cache) Close() error {
	return c.client.Close()
}
