package middleware

import (
	"context"
	"net/http"

	"github.com/nonncal/ono-tebe-nado/internal/session"
	"github.com/nonncal/ono-tebe-nado/pkg/config"
)

// Session resolves the visitor's session from the cookie, creating one on
// first contact, and stores it on the request context.
func Session(store *session.Store) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *session.Session

			if cookie, err := r.Cookie(config.SessionCookieName); err == nil {
				sess, _ = store.Get(cookie.Value)
			}

			if sess == nil {
				sess = store.Create()
				http.SetCookie(w, &http.Cookie{
					Name:     config.SessionCookieName,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionContextKey(config.SessionContextKey), sess)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type sessionContextKey string

// SessionFromContext returns the session placed on the context by Session,
// or nil when the middleware did not run.
func SessionFromContext(ctx context.Context) *session.Session {
	sess, ok := ctx.Value(sessionContextKey(config.SessionContextKey)).(*session.Session)
	if !ok {
		return nil
	}
	return sess
}
