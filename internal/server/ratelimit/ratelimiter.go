package ratelimit

import (
	"sync"
	"time"
)

// staleAfter is how long an expired window is kept before cleanup drops it.
const staleAfter = 5 * time.Minute

// Limiter tracks request counts in fixed windows per key.
type Limiter struct {
	mu     sync.Mutex
	limits map[string]*window
	now    func() time.Time
	stop   chan struct{}
	once   sync.Once
}

type window struct {
	count     int
	windowEnd time.Time
}

// NewLimiter creates a limiter with in-memory tracking.
func NewLimiter() *Limiter {
	return &Limiter{
		limits: make(map[string]*window),
		now:    time.Now,
		stop:   make(chan struct{}),
	}
}

// Allow returns true if the request is within limit requests per window.
func (l *Limiter) Allow(key string, limit int, windowDuration time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	win := l.limits[key]
	if win == nil || now.After(win.windowEnd) {
		l.limits[key] = &window{
			count:     1,
			windowEnd: now.Add(windowDuration),
		}
		return limit > 0
	}

	if win.count < limit {
		win.count++
		return true
	}

	return false
}

// StartCleanup periodically evicts stale windows to limit memory usage
// until Stop is called.
func (l *Limiter) StartCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-l.stop:
				return
			case <-ticker.C:
				l.cleanup()
			}
		}
	}()
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, win := range l.limits {
		if now.After(win.windowEnd.Add(staleAfter)) {
			delete(l.limits, key)
		}
	}
}

// Len reports how many keys are currently tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limits)
}
