package middleware

import (
	"net/http"

	"github.com/TanakaNakamura/factory-erp-api/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error a handler pushed with c.Error
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		stdErr := errors.FromDomain(err)
		fields := []zap.Field{
			zap.String("error_code", stdErr.Code),
			zap.String("message", stdErr.Message),
			zap.String("details", stdErr.Details),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.String("request_id", GetRequestID(c)),
		}
		if stdErr.HTTPStatus() >= http.StatusInternalServerError {
			logger.Error("Request failed", append(fields, zap.Error(err))...)
		} else {
			logger.Warn("Request error", fields...)
		}
		c.JSON(stdErr.HTTPStatus(), stdErr)
	}
}

// RecoveryHandler is a panic recovery middleware
func RecoveryHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errors.NewInternalError("internal server error", nil))
	})
}
