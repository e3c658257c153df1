package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/thejerf/abtime"
)

func TestLocal_Allow(t *testing.T) {
	clock := abtime.NewManualAtTime(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	l := NewLocal(2, clock)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _, _ := l.Allow(ctx, "1.2.3.4"); !ok {
			t.Fatalf("call %d should pass", i+1)
		}
	}
	ok, retry, err := l.Allow(ctx, "1.2.3.4")
	if err != nil || ok {
		t.Fatalf("third call should be limited, got ok=%v err=%v", ok, err)
	}
	if retry <= 0 || retry > 30*time.Second {
		t.Fatalf("unexpected retry-after: %v", retry)
	}

	if ok, _, _ := l.Allow(ctx, "5.6.7.8"); !ok {
		t.Fatalf("other keys have their own bucket")
	}

	clock.Advance(30 * time.Second)
	if ok, _, _ := l.Allow(ctx, "1.2.3.4"); !ok {
		t.Fatalf("a token should be back after 30s")
	}
}

func TestLocal_EvictsIdleKeys(t *testing.T) {
	clock := abtime.NewManualAtTime(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	l := NewLocal(5, clock)
	ctx := context.Background()

	_, _, _ = l.Allow(ctx, "a")
	_, _, _ = l.Allow(ctx, "b")
	clock.Advance(defaultIdleTTL + time.Second)
	_, _, _ = l.Allow(ctx, "c")

	if l.Len() != 1 {
		t.Fatalf("expected idle keys evicted, tracking %d", l.Len())
	}
}

func TestLocal_SweepsAtMostOncePerTTL(t *testing.T) {
	clock := abtime.NewManualAtTime(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	l := NewLocal(5, clock)
	ctx := context.Background()

	_, _, _ = l.Allow(ctx, "a")
	clock.Advance(defaultIdleTTL / 2)
	_, _, _ = l.Allow(ctx, "b")
	clock.Advance(defaultIdleTTL/2 + time.Second)
	_, _, _ = l.Allow(ctx, "c") // sweeps: a is idle, b is not
	if l.Len() != 2 {
		t.Fatalf("expected a evicted, tracking %d", l.Len())
	}

	clock.Advance(defaultIdleTTL / 2)
	_, _, _ = l.Allow(ctx, "d") // b is idle now, but the last sweep is too recent
	if l.Len() != 3 {
		t.Fatalf("expected no sweep within one ttl, tracking %d", l.Len())
	}

	clock.Advance(defaultIdleTTL/2 + time.Second)
	_, _, _ = l.Allow(ctx, "e")
	if l.Len() != 2 {
		t.Fatalf("expected b and c evicted on the next sweep, tracking %d", l.Len())
	}
}
