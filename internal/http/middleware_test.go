package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/makahco2025-svg/test3/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := middleware.RequestID(RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fine", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, zapcore.InfoLevel, first.Level)
	assert.Equal(t, "/fine", first.ContextMap()["path"])
	assert.Equal(t, int64(http.StatusOK), first.ContextMap()["status"])
	assert.Equal(t, int64(2), first.ContextMap()["bytes"])
	assert.NotEmpty(t, first.ContextMap()["request_id"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, int64(http.StatusInternalServerError), entries[1].ContextMap()["status"])
}

func TestSessionMiddleware_SetsCookie(t *testing.T) {
	registry := session.NewRegistry(session.Options{TTL: time.Hour, CleanupInterval: time.Hour})
	t.Cleanup(func() { registry.Close() })

	var seen *session.Session
	handler := SessionMiddleware(registry, CookieConfig{Name: testCookie, Secure: true, TTL: time.Hour})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = sessionFromContext(r.Context())
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, seen)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, seen.ID, cookies[0].Value)
	assert.True(t, cookies[0].Secure)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, int(time.Hour.Seconds()), cookies[0].MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	first := seen
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Same(t, first, seen)
}

func TestSessionFromContext_PanicsWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Panics(t, func() { sessionFromContext(req.Context()) })
}
