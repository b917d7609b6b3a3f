package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging(t *testing.T) {
	t.Run("generates and echoes a request id", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		h := middleware.Logging(zap.New(core))(okHandler)

		rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))

		id := rec.Header().Get(middleware.RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.InfoLevel, logs.All()[0].Level)
		assert.Equal(t, id, logs.All()[0].ContextMap()["request_id"])
	})

	t.Run("keeps an incoming request id", func(t *testing.T) {
		h := middleware.Logging(zap.NewNop())(okHandler)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "abc-123")

		rec := serve(h, req)
		assert.Equal(t, "abc-123", rec.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("level follows status", func(t *testing.T) {
		tests := []struct {
			status int
			level  zapcore.Level
		}{
			{http.StatusCreated, zapcore.InfoLevel},
			{http.StatusNotFound, zapcore.WarnLevel},
			{http.StatusInternalServerError, zapcore.ErrorLevel},
		}
		for _, tt := range tests {
			core, logs := observer.New(zapcore.DebugLevel)
			h := middleware.Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

			require.Equal(t, 1, logs.Len())
			assert.Equal(t, tt.level, logs.All()[0].Level, "status %d", tt.status)
			assert.EqualValues(t, tt.status, logs.All()[0].ContextMap()["status_code"])
		}
	})

	t.Run("records the principal set by inner handlers", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		userID, companyID := uuid.New(), uuid.New()
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = auth.WithUserContext(r.Context(), &auth.UserContext{
				UserID:    userID,
				CompanyID: companyID,
				Role:      domain.RoleProjectManager,
			})
			w.WriteHeader(http.StatusOK)
		})

		serve(middleware.Logging(zap.New(core))(inner), httptest.NewRequest(http.MethodGet, "/", nil))

		fields := logs.All()[0].ContextMap()
		assert.Equal(t, userID.String(), fields["user_id"])
		assert.Equal(t, string(domain.RoleProjectManager), fields["role"])
		assert.Equal(t, companyID.String(), fields["company_id"])
	})
}
