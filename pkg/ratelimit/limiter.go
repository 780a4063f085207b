// Package ratelimit implements a fixed window request counter per caller
// identity and logical operation. Counters live in redis when it is
// reachable, so limits hold across process instances, with an in process
// fallback otherwise.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type Limiter struct {
	Limit  int
	Window time.Duration

	redisClient *redis.Client

	localMutex sync.Mutex
	local      map[string]*localWindow
}

type localWindow struct {
	count   int
	resetAt time.Time
}

// NewLimiter builds a limiter. redisClient may be nil, in which case only
// the in process counters are used.
func NewLimiter(limit int, window time.Duration, redisClient *redis.Client) *Limiter {
	return &Limiter{
		Limit:  limit,
		Window: window,

		redisClient: redisClient,

		local: map[string]*localWindow{},
	}
}

// Allow records one request for the caller identity and operation key and
// reports whether it is within quota.
func (l *Limiter) Allow(ctx context.Context, identity string, operation string) Result {
	if l.redisClient != nil {
		result, err := l.allowDistributed(ctx, identity, operation)
		if err == nil {
			return result
		}

		log.Warn().Err(err).Msg("Distributed rate limit counter unavailable, using in-process fallback")
	}

	return l.allowLocal(identity, operation)
}

func (l *Limiter) allowDistributed(ctx context.Context, identity string, operation string) (Result, error) {
	windowStart := time.Now().Truncate(l.Window)
	key := fmt.Sprintf("ratelimit:%s:%s:%d", operation, identity, windowStart.Unix())

	pipe := l.redisClient.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	count := int(incr.Val())

	return Result{
		Allowed:   count <= l.Limit,
		Remaining: remaining(l.Limit, count),
		ResetAt:   windowStart.Add(l.Window),
	}, nil
}

func (l *Limiter) allowLocal(identity string, operation string) Result {
	key := fmt.Sprintf("%s:%s", operation, identity)
	now := time.Now()

	l.localMutex.Lock()
	defer l.localMutex.Unlock()

	window := l.local[key]
	if window == nil || now.After(window.resetAt) {
		window = &localWindow{resetAt: now.Add(l.Window)}
		l.local[key] = window
	}

	window.count += 1

	return Result{
		Allowed:   window.count <= l.Limit,
		Remaining: remaining(l.Limit, window.count),
		ResetAt:   window.resetAt,
	}
}

func remaining(limit int, count int) int {
	if count >= limit {
		return 0
	}
	return limit - count
}
