// Package cache 提供基于键值存储的泛型缓存实现.
//
// 该包提供类型安全的缓存操作，底层使用 sonic 做 JSON 序列化/反序列化，
// 支持 TTL（具体是否生效取决于底层 KV 实现）.
//
// 基本用法:
//
//	c := cache.NewCache(kv.NewMemoryKV())
//
//	user := model.User{ID: 1, Name: "Alice"}
//	err := cache.Set(ctx, c, "token:abc", user, 0)
//
//	cached, err := cache.Get[model.User](ctx, c, "token:abc")
//
// 缓存未命中通过底层 KV 的 not-found 错误表达，调用方自行回源.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/yeisme/docdrop/pkg/internal/storage/kv"
)

// Cache 基于KV存储的缓存实现.
type Cache struct {
	kvStore kv.KVStore
}

// NewCache 创建一个新的缓存实例.
func NewCache(kvStore kv.KVStore) *Cache {
	return &Cache{
		kvStore: kvStore,
	}
}

// Get 泛型获取缓存值.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.kvStore.Get(ctx, key)
	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, key, data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, key)
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, key)
}

// GetOrSet 获取缓存值，如果不存在则通过 getter 取值并写回缓存.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	var zero T

	// 尝试获取
	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	// 回源
	value, err := getter()
	if err != nil {
		return zero, err
	}

	if err := Set(ctx, c, key, value, ttl); err != nil {
		return zero, fmt.Errorf("failed to set cache after getter: %w", err)
	}

	return value, nil
}
