// Package ratelimit throttles per-session request rates with a sliding
// window persisted in the expiring cache, so limits survive process
// restarts and hold across replicas sharing one Redis.
package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/taskgrid/taskgrid/internal/pkg/cache"
	"github.com/taskgrid/taskgrid/internal/pkg/clock"
)

// SlidingWindow counts request timestamps per (session, endpoint) pair
// inside a moving window. One cache read and at most one write per check.
type SlidingWindow struct {
	cache cache.Cache
	clock clock.Clocker
}

// New creates a sliding-window limiter on top of the given cache.
func New(c cache.Cache, clk clock.Clocker) *SlidingWindow {
	return &SlidingWindow{cache: c, clock: clk}
}

// Allow records an attempt for the session at the endpoint and reports
// whether it fits inside the limit. Rejected attempts are not recorded,
// so hammering a limited endpoint does not extend the lockout.
func (s *SlidingWindow) Allow(ctx context.Context, sessionID, endpoint string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return false, nil
	}

	key := fmt.Sprintf("rate:%s:%s", sessionID, endpoint)
	now := s.clock.Now()
	threshold := now.Add(-window).UnixMilli()

	var stamps []int64
	raw, err := s.cache.Get(ctx, key)
	switch {
	case errors.Is(err, cache.ErrNotFound):
	case err != nil:
		return false, err
	default:
		if err := json.Unmarshal(raw, &stamps); err != nil {
			// A corrupt window only ever penalizes, never blocks.
			stamps = nil
		}
	}

	live := stamps[:0]
	for _, ts := range stamps {
		if ts > threshold {
			live = append(live, ts)
		}
	}

	if len(live) >= limit {
		return false, nil
	}

	live = append(live, now.UnixMilli())
	raw, err = json.Marshal(live)
	if err != nil {
		return false, err
	}

	// TTL equals the window, so idle keys clean themselves up.
	if err := s.cache.Set(ctx, key, raw, window); err != nil {
		return false, err
	}

	return true, nil
}
