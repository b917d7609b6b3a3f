package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/config"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func requestFrom(path, ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":4711"
	return req
}

func TestRateLimiter_LimitByIP(t *testing.T) {
	cfg := &config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     2,
		RequestsPerMinuteAuth: 5,
		WhitelistPaths:        []string{"/health", "/docs/*"},
	}

	t.Run("rejects requests over the limit", func(t *testing.T) {
		h := middleware.NewRateLimiter(cfg, zap.NewNop()).LimitByIP(okHandler)

		assert.Equal(t, http.StatusOK, serve(h, requestFrom("/api/v1/projects", "10.0.0.1")).Code)
		assert.Equal(t, http.StatusOK, serve(h, requestFrom("/api/v1/projects", "10.0.0.1")).Code)

		rec := serve(h, requestFrom("/api/v1/projects", "10.0.0.1"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body domain.APIError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "rate_limited", body.Type)
		assert.Equal(t, http.StatusTooManyRequests, body.Status)
	})

	t.Run("counts each client separately", func(t *testing.T) {
		h := middleware.NewRateLimiter(cfg, zap.NewNop()).LimitByIP(okHandler)

		for i := 0; i < 2; i++ {
			serve(h, requestFrom("/api/v1/projects", "10.0.0.2"))
		}
		assert.Equal(t, http.StatusTooManyRequests, serve(h, requestFrom("/api/v1/projects", "10.0.0.2")).Code)
		assert.Equal(t, http.StatusOK, serve(h, requestFrom("/api/v1/projects", "10.0.0.3")).Code)
	})

	t.Run("keys on the first forwarded hop", func(t *testing.T) {
		h := middleware.NewRateLimiter(cfg, zap.NewNop()).LimitByIP(okHandler)

		forwarded := func(xff string) *http.Request {
			req := requestFrom("/api/v1/projects", "10.0.0.9")
			req.Header.Set("X-Forwarded-For", xff)
			return req
		}
		serve(h, forwarded("203.0.113.7, 10.0.0.9"))
		serve(h, forwarded("203.0.113.7"))
		assert.Equal(t, http.StatusTooManyRequests, serve(h, forwarded("203.0.113.7, 10.1.1.1")).Code)
		assert.Equal(t, http.StatusOK, serve(h, forwarded("203.0.113.8")).Code)
	})

	t.Run("skips whitelisted paths", func(t *testing.T) {
		h := middleware.NewRateLimiter(cfg, zap.NewNop()).LimitByIP(okHandler)

		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, serve(h, requestFrom("/health", "10.0.0.4")).Code)
			assert.Equal(t, http.StatusOK, serve(h, requestFrom("/docs/index.html", "10.0.0.4")).Code)
		}
	})

	t.Run("passes everything through when disabled", func(t *testing.T) {
		disabled := *cfg
		disabled.Enabled = false
		h := middleware.NewRateLimiter(&disabled, zap.NewNop()).LimitByIP(okHandler)

		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, serve(h, requestFrom("/api/v1/projects", "10.0.0.5")).Code)
		}
	})
}

func TestRateLimiter_LimitByUser(t *testing.T) {
	cfg := &config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     100,
		RequestsPerMinuteAuth: 1,
	}
	h := middleware.NewRateLimiter(cfg, zap.NewNop()).LimitByUser(okHandler)

	asUser := func(userID uuid.UUID) *http.Request {
		req := requestFrom("/api/v1/tasks", "10.0.0.6")
		ctx := auth.WithUserContext(req.Context(), &auth.UserContext{
			UserID: userID,
			Role:   domain.RoleTeamMember,
		})
		return req.WithContext(ctx)
	}

	alice, bob := uuid.New(), uuid.New()
	assert.Equal(t, http.StatusOK, serve(h, asUser(alice)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, asUser(alice)).Code)
	// same IP, different user
	assert.Equal(t, http.StatusOK, serve(h, asUser(bob)).Code)
}
