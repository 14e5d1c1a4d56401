package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetOrLoadJSON 带类型的读穿；缓存里的值解不开时删掉并回源
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration, load func(ctx context.Context) (*T, error)) (*T, error) {
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	var out T
	if e := json.Unmarshal(b, &out); e != nil {
		c.Delete(ctx, key)
		return load(ctx)
	}
	return &out, nil
}
