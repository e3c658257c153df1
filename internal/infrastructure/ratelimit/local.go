// Package ratelimit provides a per-key token bucket limiter for a single
// process.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/thejerf/abtime"
	"golang.org/x/time/rate"
)

const defaultIdleTTL = 10 * time.Minute

// Local keeps one token bucket per key and forgets keys idle for longer
// than the TTL.
type Local struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	clock   abtime.AbstractTime
	entries map[string]*bucket

	// lastSweep bounds idle eviction to one pass per ttl.
	lastSweep time.Time
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewLocal allows perMinute events per key per minute, all of which may be
// spent at once.
func NewLocal(perMinute int, clock abtime.AbstractTime) *Local {
	if perMinute <= 0 {
		perMinute = 1
	}
	if clock == nil {
		clock = abtime.NewRealTime()
	}
	return &Local{
		limit:     rate.Limit(float64(perMinute) / 60),
		burst:     perMinute,
		ttl:       defaultIdleTTL,
		clock:     clock,
		entries:   make(map[string]*bucket),
		lastSweep: clock.Now(),
	}
}

// Allow takes a token for key. It never fails; the error result keeps the
// signature shared with the Redis limiter.
func (l *Local) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.entries[key]
	if b == nil {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = b
	}
	b.lastSeen = now

	if now.Sub(l.lastSweep) > l.ttl {
		l.sweep(now)
	}

	r := b.lim.ReserveN(now, 1)
	if !r.OK() {
		return false, 0, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay, nil
	}
	return true, 0, nil
}

func (l *Local) sweep(now time.Time) {
	for k, v := range l.entries {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.entries, k)
		}
	}
	l.lastSweep = now
}

// Len reports how many keys are tracked.
func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
