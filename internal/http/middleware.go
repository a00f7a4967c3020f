package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/makahco2025-svg/test3/internal/session"
	"github.com/makahco2025-svg/test3/pkg/logger"
	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// SessionMiddleware resolves the session named by the cookie, starting a new
// one when the cookie is missing or its session expired. The session and its
// cart are placed in the request context.
func SessionMiddleware(registry *session.Registry, cfg CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(cfg.Name); err == nil {
				id = c.Value
			}

			sess, created := registry.GetOrCreate(id)
			if created {
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.Name,
					Value:    sess.ID,
					Path:     "/",
					MaxAge:   int(cfg.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			ctx = sess.Context(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromContext(ctx context.Context) *session.Session {
	sess, ok := ctx.Value(sessionKey).(*session.Session)
	if !ok {
		panic("http: session handler mounted without SessionMiddleware")
	}
	return sess
}

// AdminOnly rejects requests from sessions that have not logged in as admin.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r.Context())
		var admin bool
		sess.Do(func() { admin = sess.IsAdmin() })
		if !admin {
			respondError(w, http.StatusUnauthorized, "unauthorized", "admin login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request with the request and trace ids.
func RequestLogger(l *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			}
			reqLogger := logger.WithTrace(r.Context(), l)
			if status >= http.StatusInternalServerError {
				reqLogger.Error("request completed", fields...)
				return
			}
			reqLogger.Info("request completed", fields...)
		})
	}
}
