package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new logger instance
func New(environment string) *zap.Logger {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	return logger.With(zap.String("service", "factory-erp-api"))
}

// ForRequest returns a child logger tagged with the request id and the
// authenticated user, when present
func ForRequest(logger *zap.Logger, c *gin.Context) *zap.Logger {
	fields := make([]zap.Field, 0, 3)
	if requestID := c.GetString("request_id"); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if username := c.GetString("username"); username != "" {
		fields = append(fields, zap.String("username", username))
	}
	if role := c.GetString("role"); role != "" {
		fields = append(fields, zap.String("role", role))
	}
	return logger.With(fields...)
}

// GinMiddleware returns a Gin middleware for request logging
func GinMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.String("user-agent", c.Request.UserAgent()),
			zap.Duration("latency", latency),
		}

		requestLogger := ForRequest(logger, c)
		switch {
		case c.Writer.Status() >= 500:
			requestLogger.Error("HTTP Request", fields...)
		case c.Writer.Status() >= 400:
			requestLogger.Warn("HTTP Request", fields...)
		default:
			requestLogger.Info("HTTP Request", fields...)
		}
	}
}
