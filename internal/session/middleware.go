package session

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const CookieName = "cart_session"

type ctxKey string

const sessionKey ctxKey = "session_id"

func FromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionKey).(string)
	return v, ok && v != ""
}

func WithSession(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionKey, sid)
}

// Middleware resolves the cart session from the cookie, minting a new one when
// the cookie is missing, expired or forged.
func Middleware(t *TokenMaker, ttl time.Duration, secure bool, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(CookieName); err == nil {
				if claims, err := t.Parse(c.Value); err == nil {
					next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), claims.SessionID)))
					return
				}
			}

			sid, token, err := t.NewSession(ttl)
			if err != nil {
				log.Error("session issue", zap.Error(err))
				http.Error(w, "server error", http.StatusInternalServerError)
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sid)))
		})
	}
}
