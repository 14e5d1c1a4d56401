package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisWindow ZSET 滑动日志，score 为微秒时间戳；多实例共享计数
type RedisWindow struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisWindow(rdb *redis.Client) *RedisWindow {
	return &RedisWindow{rdb: rdb, now: time.Now}
}

func (w *RedisWindow) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	if limit <= 0 {
		return false, window, nil
	}
	now := w.now()
	nowUS := now.UnixMicro()
	member := strconv.FormatInt(nowUS, 10) + "-" + uuid.NewString()

	pipe := w.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(nowUS-window.Microseconds(), 10))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(nowUS), Member: member})
	card := pipe.ZCard(ctx, key)
	oldest := pipe.ZRangeWithScores(ctx, key, 0, 0)
	pipe.PExpire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	if card.Val() <= int64(limit) {
		return true, 0, nil
	}
	// 被拒的请求不占窗口
	if err := w.rdb.ZRem(ctx, key, member).Err(); err != nil {
		return false, 0, err
	}
	retry := window
	if zs := oldest.Val(); len(zs) > 0 {
		retry = time.Duration(int64(zs[0].Score)+window.Microseconds()-nowUS) * time.Microsecond
	}
	if retry < time.Second {
		retry = time.Second
	}
	return false, retry, nil
}
