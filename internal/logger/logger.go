// Package logger builds the zap logger shared by the API, its middleware and
// background jobs.
package logger

import (
	"fmt"
	"strings"

	"github.com/straye-as/project-ledger-api/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a structured logger. Production and the json format get
// ISO8601 JSON lines; anything else gets a colored console encoder. An
// unknown level falls back to info and is reported once through the new
// logger.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	zapCfg := baseConfig(cfg.Format, appCfg.Environment)

	level, levelErr := parseLevel(cfg.Level)
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.InitialFields = map[string]interface{}{
		"app":         appCfg.Name,
		"environment": appCfg.Environment,
	}

	log, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if levelErr != nil {
		log.Warn("invalid log level, using info", zap.String("level", cfg.Level), zap.Error(levelErr))
	}
	return log, nil
}

func baseConfig(format, environment string) zap.Config {
	if strings.EqualFold(format, "json") || environment == "production" {
		c := zap.NewProductionConfig()
		c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return c
	}
	c := zap.NewDevelopmentConfig()
	c.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return c
}

// parseLevel treats an empty level as info.
func parseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zapcore.InfoLevel, err
	}
	return level, nil
}

// WithRequest adds request context to logger
func WithRequest(logger *zap.Logger, method, path, requestID string) *zap.Logger {
	return logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)
}

// WithPrincipal tags log lines with the authenticated user and the company
// the request is scoped to.
func WithPrincipal(logger *zap.Logger, userID, role, companyID string) *zap.Logger {
	return logger.With(
		zap.String("user_id", userID),
		zap.String("role", role),
		zap.String("company_id", companyID),
	)
}

// WithJob tags log lines emitted by a scheduled job run.
func WithJob(logger *zap.Logger, name, cronExpr string) *zap.Logger {
	return logger.With(
		zap.String("job_name", name),
		zap.String("cron_expr", cronExpr),
	)
}
