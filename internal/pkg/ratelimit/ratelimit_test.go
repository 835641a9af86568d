package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/taskgrid/taskgrid/internal/pkg/cache"
	"github.com/taskgrid/taskgrid/internal/pkg/clock"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func (c *stepClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func TestSlidingWindowAllow(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	newLimiter := func() (*SlidingWindow, *stepClock) {
		clk := &stepClock{now: start}
		return New(cache.NewMemory(clk), clk), clk
	}

	t.Run("limit of three admits three then rejects", func(t *testing.T) {
		limiter, _ := newLimiter()

		want := []bool{true, true, true, false}
		for i, exp := range want {
			got, err := limiter.Allow(ctx, "sess-1", "login", 3, time.Minute)
			if err != nil {
				t.Fatalf("Allow() attempt %d error = %v", i+1, err)
			}
			if got != exp {
				t.Fatalf("Allow() attempt %d = %v, want %v", i+1, got, exp)
			}
		}
	})

	t.Run("admits again once the window has passed", func(t *testing.T) {
		limiter, clk := newLimiter()

		for range 3 {
			if _, err := limiter.Allow(ctx, "sess-1", "login", 3, time.Minute); err != nil {
				t.Fatalf("Allow() error = %v", err)
			}
		}

		clk.advance(61 * time.Second)

		got, err := limiter.Allow(ctx, "sess-1", "login", 3, time.Minute)
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !got {
			t.Fatal("Allow() after window = false, want true")
		}
	})

	t.Run("rejected attempts do not extend the lockout", func(t *testing.T) {
		limiter, clk := newLimiter()

		for range 4 {
			if _, err := limiter.Allow(ctx, "sess-1", "login", 3, time.Minute); err != nil {
				t.Fatalf("Allow() error = %v", err)
			}
		}

		// The rejected fourth attempt must not have been recorded.
		clk.advance(61 * time.Second)

		got, err := limiter.Allow(ctx, "sess-1", "login", 3, time.Minute)
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !got {
			t.Fatal("Allow() = false, want true after original window expired")
		}
	})

	t.Run("sessions and endpoints are isolated", func(t *testing.T) {
		limiter, _ := newLimiter()

		for range 3 {
			if _, err := limiter.Allow(ctx, "sess-1", "login", 3, time.Minute); err != nil {
				t.Fatalf("Allow() error = %v", err)
			}
		}

		if got, _ := limiter.Allow(ctx, "sess-2", "login", 3, time.Minute); !got {
			t.Fatal("Allow() for other session = false, want true")
		}
		if got, _ := limiter.Allow(ctx, "sess-1", "resend", 3, time.Minute); !got {
			t.Fatal("Allow() for other endpoint = false, want true")
		}
	})

	t.Run("zero limit rejects everything", func(t *testing.T) {
		limiter, _ := newLimiter()

		if got, _ := limiter.Allow(ctx, "sess-1", "login", 0, time.Minute); got {
			t.Fatal("Allow() with zero limit = true, want false")
		}
	})
}

var _ clock.Clocker = (*stepClock)(nil)
