package logger

import (
	"strings"

	"estate_market_backend/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "estate-market-api"

// New builds the root logger. Release mode starts from zap's production preset
// (sampled, JSON); other modes from the development preset with colored levels.
// LOG_FORMAT overrides the encoding either way.
func New(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if cfg.GinMode == gin.ReleaseMode {
		zc = zap.NewProductionConfig()
	}

	zc.Level = zap.NewAtomicLevelAt(parseLevel(cfg.LogLevel))
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.InitialFields = map[string]interface{}{"service": serviceName}

	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		zc.Encoding = "json"
		zc.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	case "console":
		zc.Encoding = "console"
	}

	return zc.Build()
}

// parseLevel accepts zap level names plus "warning"; anything else is info.
func parseLevel(raw string) zapcore.Level {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "warning" {
		raw = "warn"
	}
	lvl, err := zapcore.ParseLevel(raw)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
