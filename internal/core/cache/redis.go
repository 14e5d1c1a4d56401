package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache Redis 读穿缓存；nil *Cache 等价于没有缓存，redis 故障按未命中处理
type Cache struct {
	RDB   *redis.Client
	sf    singleflight.Group
	epoch atomic.Uint64
}

func New(rdb *redis.Client) *Cache { return &Cache{RDB: rdb} }

// Connect 建连并 ping 一次
func Connect(ctx context.Context, addr, pass string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// loadTimeout 合并回源脱离调用方 ctx 后的上限
const loadTimeout = 10 * time.Second

func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if c == nil || c.RDB == nil {
		return load(ctx)
	}
	if b, err := c.RDB.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	// single flight 合并回源；回源不跟随单个调用方取消
	ch := c.sf.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		epoch := c.epoch.Load()
		b, e := load(lctx)
		if e != nil {
			return nil, e
		}
		// 回源期间发生过失效就不回填，避免旧值盖住新值
		if c.epoch.Load() == epoch {
			_ = c.RDB.Set(lctx, key, b, ttl).Err()
		}
		return b, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]byte), nil
	}
}

// Delete 失效；错误忽略，最多读到 TTL 内的旧值
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.RDB == nil || len(keys) == 0 {
		return
	}
	c.epoch.Add(1)
	for _, k := range keys {
		c.sf.Forget(k)
	}
	_ = c.RDB.Del(ctx, keys...).Err()
}
