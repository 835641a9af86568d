package router

import (
	"context"
	"net/http"

	"github.com/taskgrid/taskgrid/internal/pkg/uid"
)

// SessionCookieName is the cookie that carries the anonymous browser
// session ID. OTP tickets and rate-limit windows key off it, so it must
// exist before a user ever authenticates.
const SessionCookieName = "tg_session"

type sessionIDKey struct{}

// GetSessionID returns the browser session ID stored in the context.
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}

// SetSessionID stores a session ID in the context. Exported for tests.
func SetSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

func middlewareSession(gen uid.StringID, secure bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sid string
			if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
				sid = c.Value
			}

			if sid == "" {
				sid = gen.Generate()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    sid,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(SetSessionID(r.Context(), sid)))
		})
	}
}
