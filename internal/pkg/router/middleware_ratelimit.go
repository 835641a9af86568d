package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/taskgrid/taskgrid/internal/pkg/ratelimit"
)

// RateRule caps how many requests one session may make to a route inside
// the window.
type RateRule struct {
	Limit  int
	Window time.Duration
}

// RateRules maps "METHOD /route/pattern" keys to their rule. Routes
// without an entry are unlimited.
type RateRules map[string]RateRule

func middlewareRateLimit(limiter *ratelimit.SlidingWindow, rules RateRules) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := r.Method + " " + matchedRoutePath(r)

			rule, ok := rules[route]
			if !ok || limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			sid := GetSessionID(r.Context())
			if sid == "" {
				// No session means no key to count under; the session
				// middleware runs first, so this is a wiring mistake.
				slog.WarnContext(r.Context(), "rate limit skipped, no session id", "route", route)
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := limiter.Allow(r.Context(), sid, route, rule.Limit, rule.Window)
			if err != nil {
				slog.ErrorContext(r.Context(), "rate limit check failed", "route", route, "error", err)
				writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
				return
			}

			if !allowed {
				writeJSON(w, errorResponse{Message: "Too many requests. Please try again later."}, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
