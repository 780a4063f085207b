package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestAllowLocalWithinLimit(t *testing.T) {
	limiter := NewLimiter(20, time.Minute, nil)

	for i := 1; i <= 20; i++ {
		result := limiter.Allow(context.Background(), "203.0.113.7", "boards")
		if !result.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
		if result.Remaining != 20-i {
			t.Errorf("request %d: expected %d remaining, got %d", i, 20-i, result.Remaining)
		}
	}

	result := limiter.Allow(context.Background(), "203.0.113.7", "boards")
	if result.Allowed {
		t.Error("request 21 should be rejected")
	}
	if result.Remaining != 0 {
		t.Errorf("expected 0 remaining, got %d", result.Remaining)
	}
	if result.ResetAt.Before(time.Now()) {
		t.Error("expected a future reset instant")
	}
}

// Counters are independent per caller identity and per operation.
func TestAllowLocalIndependentKeys(t *testing.T) {
	limiter := NewLimiter(1, time.Minute, nil)

	if !limiter.Allow(context.Background(), "caller-a", "boards").Allowed {
		t.Error("first request for caller-a should be allowed")
	}
	if limiter.Allow(context.Background(), "caller-a", "boards").Allowed {
		t.Error("second request for caller-a should be rejected")
	}

	if !limiter.Allow(context.Background(), "caller-b", "boards").Allowed {
		t.Error("caller-b must not share caller-a's counter")
	}
	if !limiter.Allow(context.Background(), "caller-a", "services").Allowed {
		t.Error("a different operation must not share the boards counter")
	}
}

func TestAllowDistributed(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	limiter := NewLimiter(5, time.Minute, client)

	for i := 1; i <= 5; i++ {
		if !limiter.Allow(context.Background(), "203.0.113.7", "boards").Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
	}

	if limiter.Allow(context.Background(), "203.0.113.7", "boards").Allowed {
		t.Error("request 6 should be rejected")
	}

	// Advancing past the window admits requests again.
	server.FastForward(2 * time.Minute)

	if !limiter.Allow(context.Background(), "203.0.113.7", "boards").Allowed {
		t.Error("expected a fresh window after the reset instant")
	}
}

// Losing redis degrades to the in-process counter instead of failing open
// or closed.
func TestAllowFallsBackWhenRedisGone(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	limiter := NewLimiter(2, time.Minute, client)

	if !limiter.Allow(context.Background(), "203.0.113.7", "boards").Allowed {
		t.Fatal("first request should be allowed")
	}

	server.Close()

	if !limiter.Allow(context.Background(), "203.0.113.7", "boards").Allowed {
		t.Error("expected the in-process fallback to keep serving")
	}
	if !limiter.Allow(context.Background(), "203.0.113.7", "boards").Allowed {
		t.Error("the fallback counter starts fresh, so the second local request is within quota")
	}
	if limiter.Allow(context.Background(), "203.0.113.7", "boards").Allowed {
		t.Error("expected the fallback counter to enforce the limit")
	}
}
