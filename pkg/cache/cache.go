// Package cache 提供基于键值存储的泛型缓存实现.
//
// 该包提供了类型安全的缓存操作，支持任意类型的缓存值.
// 底层使用JSON序列化/反序列化（bytedance/sonic），支持TTL设置.
//
// 基本用法:
//
//	c := cache.NewCache(kvStore)
//
//	// 缓存路径结果
//	err := cache.Set(ctx, c, cache.Key("path", folderID), segments, time.Minute)
//
//	// 使用GetOrSet模式
//	segments, err := cache.GetOrSet(ctx, c, key, func() ([]string, error) {
//	    return buildPathFromDB(folderID)
//	}, time.Minute)
//
// 缓存未命中不会被视为错误；序列化错误会被包装返回.
// 线程安全性取决于底层的KV存储实现.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"

	"github.com/yeisme/drivevault/pkg/internal/storage/kv"
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

// Key 构造缓存键：前缀 + 各部分的 xxhash 摘要.
// 哈希避免把用户可控的长字符串直接拼进键名.
func Key(prefix string, parts ...string) string {
	h := xxhash.New()
	for _, p := range parts {
		_, _ = h.WriteString(p)
		_, _ = h.WriteString("\x1f")
	}

	return prefix + ":" + strconv.FormatUint(h.Sum64(), 16)
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

// GetOrSet 获取缓存值，如果不存在则通过 getter 计算并写入.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	var zero T

	// 尝试获取
	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	// 获取新值
	value, err := getter()
	if err != nil {
		return zero, err
	}

	// 设置缓存；缓存失败不影响返回值
	_ = Set(ctx, c, key, value, ttl)

	return value, nil
}

// DeletePrefix 删除指定前缀下的全部缓存键.
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) error {
	keys, err := c.kvStore.Keys(ctx, "")
	if err != nil {
		return err
	}

	for _, key := range keys {
		if !strings.HasPrefix(key, prefix+":") {
			continue
		}

		if delErr := c.kvStore.Delete(ctx, key); delErr != nil {
			return delErr
		}
	}

	return nil
}
