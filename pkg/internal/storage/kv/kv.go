// Package kv 提供用于键值存储的接口和实现.
// docdrop 是单进程服务，默认（也是唯一）实现为进程内内存存储，
// 用作令牌查询的轻量缓存后端.
package kv

import (
	"context"
	"time"
)

// KVStore 定义键值存储接口.
type KVStore interface {
	// Get 获取键的值.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set 设置键的值，可选过期时间.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete 删除键.
	Delete(ctx context.Context, key string) error
	// Exists 检查键是否存在.
	Exists(ctx context.Context, key string) (bool, error)
	// Close 关闭存储连接.
	Close() error
}
