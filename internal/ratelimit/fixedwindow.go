// Package ratelimit bounds request volume per credential identity using a
// fixed window: the counter resets at window boundaries rather than decaying.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultLimit and DefaultWindow match the production gateway budget:
	// 60 requests per rolling minute per identity.
	DefaultLimit  = 60
	DefaultWindow = time.Minute

	idleFactor = 5
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration // populated only when rejected
}

type bucket struct {
	windowStart time.Time
	count       int
}

// FixedWindow is a process-wide limiter table. It is created once at process
// start and shared by every request; bucket arithmetic happens under a single
// lock whose critical section covers only the check-and-increment, never any
// downstream work.
type FixedWindow struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	stopOnce sync.Once
	stop     chan struct{}
}

// Option configures FixedWindow.
type Option func(*FixedWindow)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(fw *FixedWindow) {
		if fn != nil {
			fw.now = fn
		}
	}
}

// New constructs a limiter admitting limit requests per window for each
// identity key. Non-positive arguments fall back to the defaults.
func New(limit int, window time.Duration, opts ...Option) *FixedWindow {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	fw := &FixedWindow{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(fw)
	}
	go fw.evictLoop()
	return fw
}

// Allow records one request for the identity and decides admission. The
// increment is never rolled back: a request that is later cancelled or fails
// authentication has still spent its quota unit.
func (fw *FixedWindow) Allow(identity string) Decision {
	now := fw.now()

	fw.mu.Lock()
	defer fw.mu.Unlock()

	b, ok := fw.buckets[identity]
	if !ok || !now.Before(b.windowStart.Add(fw.window)) {
		fw.buckets[identity] = &bucket{windowStart: now, count: 1}
		return Decision{Allowed: true, Remaining: fw.limit - 1}
	}

	b.count++
	if b.count > fw.limit {
		return Decision{
			Allowed:    false,
			RetryAfter: b.windowStart.Add(fw.window).Sub(now),
		}
	}
	return Decision{Allowed: true, Remaining: fw.limit - b.count}
}

// Limit returns the configured per-window budget.
func (fw *FixedWindow) Limit() int { return fw.limit }

// Window returns the configured window duration.
func (fw *FixedWindow) Window() time.Duration { return fw.window }

// Close stops the background eviction goroutine.
func (fw *FixedWindow) Close() {
	fw.stopOnce.Do(func() { close(fw.stop) })
}

// evictLoop drops buckets whose window elapsed long ago so the table does not
// grow with every identity ever seen.
func (fw *FixedWindow) evictLoop() {
	ticker := time.NewTicker(fw.window)
	defer ticker.Stop()
	for {
		select {
		case <-fw.stop:
			return
		case <-ticker.C:
			cutoff := fw.now().Add(-time.Duration(idleFactor) * fw.window)
			fw.mu.Lock()
			for k, b := range fw.buckets {
				if b.windowStart.Before(cutoff) {
					delete(fw.buckets, k)
				}
			}
			fw.mu.Unlock()
		}
	}
}
