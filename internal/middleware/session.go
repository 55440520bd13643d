package middleware

import (
	"context"
	"net/http"

	"github.com/parleylab/negotiation-avatar/internal/service/session"
)

type contextKey string

const sessionKey contextKey = "negotiation-session"

// CookieName carries the negotiation session across requests.
const CookieName = "negotiation_session"

// WithSession resolves or creates the visitor's session from the request
// cookie and stores it on the context.
func WithSession(sessions *session.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var cookieID string
			if cookie, err := r.Cookie(CookieName); err == nil {
				cookieID = cookie.Value
			}

			sess := sessions.Ensure(cookieID)
			if sess.ID != cookieID {
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    sess.ID,
					Path:     "/",
					MaxAge:   20 * 60,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session placed by WithSession.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(session.Session)
	return sess, ok
}
