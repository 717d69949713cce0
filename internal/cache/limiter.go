package cache

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether another request identified by key fits in the
// current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is a fixed-window limiter kept in process memory. It is
// used when no Redis server is configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	rate    int
	window  time.Duration
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

func NewMemoryLimiter(rate int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		rate:    rate,
		window:  window,
		buckets: map[string]*bucket{},
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || now.Sub(b.lastRefill) >= l.window {
		b = &bucket{tokens: l.rate, lastRefill: now}
		l.buckets[key] = b
	}
	if b.tokens <= 0 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

// Sweep drops buckets idle for more than two windows.
func (l *MemoryLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, b := range l.buckets {
		if now.Sub(b.lastRefill) > 2*l.window {
			delete(l.buckets, key)
		}
	}
}

// RunSweeper calls Sweep every window until ctx is cancelled.
func (l *MemoryLimiter) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
