package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `json:"name"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb), mr
}

func TestGetOrLoadJSON_ReadThrough(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	calls := 0
	load := func(context.Context) (*item, error) {
		calls++
		return &item{Name: "alice"}, nil
	}

	got, err := GetOrLoadJSON(c, ctx, "user:1", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)

	got, err = GetOrLoadJSON(c, ctx, "user:1", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists("user:1"))
	assert.Equal(t, time.Minute, mr.TTL("user:1"))

	c.Delete(ctx, "user:1")
	assert.False(t, mr.Exists("user:1"))
	_, err = GetOrLoadJSON(c, ctx, "user:1", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGetOrLoadJSON_CorruptEntryReloads(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("user:2", "{not json"))

	got, err := GetOrLoadJSON(c, context.Background(), "user:2", time.Minute, func(context.Context) (*item, error) {
		return &item{Name: "bob"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Name)
	assert.False(t, mr.Exists("user:2"))
}

func TestGetOrLoad_LoadErrorNotCached(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("boom")

	_, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(context.Context) ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestGetOrLoad_CallerCancelDoesNotFailWaiters(t *testing.T) {
	c, _ := newTestCache(t)
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	load := func(ctx context.Context) ([]byte, error) {
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []byte("v"), nil
	}

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.GetOrLoad(first, "k", time.Minute, load)
		firstErr <- err
	}()
	<-started

	second := make(chan []byte, 1)
	go func() {
		b, _ := c.GetOrLoad(context.Background(), "k", time.Minute, load)
		second <- b
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)
	close(release)
	assert.Equal(t, "v", string(<-second))
}

func TestGetOrLoad_InvalidateDuringLoadSkipsFill(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	b, err := c.GetOrLoad(ctx, "user:3", time.Minute, func(context.Context) ([]byte, error) {
		// 回源期间发生了写入和失效
		c.Delete(ctx, "user:3")
		return []byte("old"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "old", string(b))
	assert.False(t, mr.Exists("user:3"))

	_, err = c.GetOrLoad(ctx, "user:3", time.Minute, func(context.Context) ([]byte, error) {
		return []byte("new"), nil
	})
	require.NoError(t, err)
	got, err := mr.Get("user:3")
	require.NoError(t, err)
	assert.Equal(t, "new", got)
}

func TestGetOrLoad_RedisDownFallsBackToLoader(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	b, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(context.Context) ([]byte, error) {
		return []byte(`"v"`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, `"v"`, string(b))
}

func TestNilCache(t *testing.T) {
	var c *Cache
	got, err := GetOrLoadJSON(c, context.Background(), "k", time.Minute, func(context.Context) (*item, error) {
		return &item{Name: "bob"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Name)
	c.Delete(context.Background(), "k")
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
