package middleware

import (
	"time"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader     = "X-Request-ID"
	RequestIDContextKey = "requestID"
)

// quietPaths are logged at debug level when they succeed.
var quietPaths = map[string]bool{"/health": true}

// ZapLogger tags every request with an id (reusing an incoming X-Request-ID),
// attaches a request scoped logger for common.RequestLogger, and writes one access
// log line when the handler chain returns.
func ZapLogger(logger *zap.Logger, cfg *config.Config) gin.HandlerFunc {
	verbose := cfg.GinMode != gin.ReleaseMode
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		reqLogger := logger.With(zap.String("request_id", requestID))
		c.Header(RequestIDHeader, requestID)
		c.Set(RequestIDContextKey, requestID)
		c.Set(common.LoggerKey, reqLogger)

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if verbose && c.Request.URL.RawQuery != "" {
			fields = append(fields, zap.String("query", c.Request.URL.RawQuery))
		}
		if principal, ok := common.GetPrincipal(c); ok {
			fields = append(fields, zap.String("user_id", principal.ID))
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			fields = append(fields, zap.Strings("errors", errs.Errors()))
		}

		switch {
		case status >= 500:
			reqLogger.Error("Request failed", fields...)
		case status >= 400:
			reqLogger.Warn("Request rejected", fields...)
		case quietPaths[c.Request.URL.Path]:
			reqLogger.Debug("Request", fields...)
		default:
			reqLogger.Info("Request", fields...)
		}
	}
}
