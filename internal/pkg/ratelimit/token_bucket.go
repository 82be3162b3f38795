package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

/*
單一程序內共用的 token bucket，不分 key
請使用 defer 呼叫 Stop()
*/
type TokenBucket struct {
	cfg          Config
	current      atomic.Int64
	lastRefilled atomic.Int64
	cancel       chan struct{}
	once         sync.Once
}

var _ ILimiter = (*TokenBucket)(nil)

func NewTokenBucket(cfg Config) *TokenBucket {
	t := &TokenBucket{
		cfg:    cfg.orDefault(),
		cancel: make(chan struct{}),
	}
	t.current.Store(int64(t.cfg.Capacity))
	t.lastRefilled.Store(time.Now().UnixNano())
	go t.background()
	return t
}

func (t *TokenBucket) Allow(_ context.Context, _ string) bool {
	for {
		current := t.current.Load()
		if current <= 0 {
			return false
		}
		if t.current.CompareAndSwap(current, current-1) {
			return true
		}
	}
}

func (t *TokenBucket) countNewTokens(current int64, now int64) int64 {
	elapsed := time.Duration(now - t.lastRefilled.Load())
	newTokens := current + int64(elapsed.Seconds()*t.cfg.RatePS)
	if newTokens > int64(t.cfg.Capacity) {
		newTokens = int64(t.cfg.Capacity)
	}
	return newTokens
}

func (t *TokenBucket) background() {
	ticker := time.NewTicker(t.cfg.RefillRate)
	defer ticker.Stop()

	for {
		select {
		case <-t.cancel:
			return
		case <-ticker.C:
			for {
				now := time.Now().UnixNano()
				current := t.current.Load()
				if t.current.CompareAndSwap(current, t.countNewTokens(current, now)) {
					t.lastRefilled.Store(now)
					break
				}
			}
		}
	}
}

func (t *TokenBucket) Stop() {
	t.once.Do(func() {
		close(t.cancel)
	})
}
