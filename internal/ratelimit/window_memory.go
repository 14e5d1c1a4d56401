package ratelimit

import (
	"context"
	"sync"
	"time"
)

const memorySweepAt = 10000

// MemoryWindow 单进程滑动日志窗口，每个键保留窗口内放行请求的时间戳
type MemoryWindow struct {
	mu   sync.Mutex
	keys map[string][]time.Time
	now  func() time.Time
}

func NewMemoryWindow() *MemoryWindow {
	return &MemoryWindow{keys: make(map[string][]time.Time), now: time.Now}
}

func (m *MemoryWindow) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	if limit <= 0 {
		return false, window, nil
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	hits, ok := m.keys[key]
	if !ok && len(m.keys) >= memorySweepAt {
		m.sweep(now, window)
	}
	hits = prune(hits, now.Add(-window))

	if len(hits) >= limit {
		m.keys[key] = hits
		retry := hits[0].Add(window).Sub(now)
		if retry < time.Second {
			retry = time.Second
		}
		return false, retry, nil
	}
	m.keys[key] = append(hits, now)
	return true, 0, nil
}

// prune 丢掉 cutoff 及之前的记录，hits 按时间升序
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return hits
	}
	return append(hits[:0], hits[i:]...)
}

// sweep 删除窗口内已无记录的键
func (m *MemoryWindow) sweep(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	for k, hits := range m.keys {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(m.keys, k)
		}
	}
}

func (m *MemoryWindow) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}
