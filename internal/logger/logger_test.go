package logger_test

import (
	"testing"

	"github.com/straye-as/project-ledger-api/internal/config"
	"github.com/straye-as/project-ledger-api/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Levels(t *testing.T) {
	app := &config.AppConfig{Name: "project-ledger-api", Environment: "development"}

	tests := []struct {
		name      string
		level     string
		format    string
		wantDebug bool
		wantInfo  bool
	}{
		{name: "debug console", level: "debug", format: "console", wantDebug: true, wantInfo: true},
		{name: "warn json", level: "WARN", format: "json", wantDebug: false, wantInfo: false},
		{name: "empty defaults to info", level: "", format: "json", wantDebug: false, wantInfo: true},
		{name: "unknown falls back to info", level: "chatty", format: "console", wantDebug: false, wantInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := logger.NewLogger(&config.LoggingConfig{Level: tt.level, Format: tt.format}, app)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDebug, log.Core().Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.wantInfo, log.Core().Enabled(zapcore.InfoLevel))
			assert.True(t, log.Core().Enabled(zapcore.ErrorLevel))
		})
	}
}

func TestContextHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	logger.WithPrincipal(
		logger.WithRequest(base, "POST", "/api/v1/timesheets", "req-1"),
		"user-1", "project_manager", "company-1",
	).Info("handled")
	logger.WithJob(base, "overdue-tasks", "0 0 7 * * *").Info("ran")

	entries := logs.All()
	require.Len(t, entries, 2)

	request := entries[0].ContextMap()
	assert.Equal(t, "POST", request["method"])
	assert.Equal(t, "/api/v1/timesheets", request["path"])
	assert.Equal(t, "req-1", request["request_id"])
	assert.Equal(t, "user-1", request["user_id"])
	assert.Equal(t, "project_manager", request["role"])
	assert.Equal(t, "company-1", request["company_id"])

	job := entries[1].ContextMap()
	assert.Equal(t, "overdue-tasks", job["job_name"])
	assert.Equal(t, "0 0 7 * * *", job["cron_expr"])
}
