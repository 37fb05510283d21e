package utils

import (
	"net/http"
	"runtime/debug"

	"servicedesk/apperrors"
	"servicedesk/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				stack := debug.Stack()
				GetLogger().Error("Unhandled panic",
					zap.Any("error", rec),
					zap.String("path", c.Request.URL.Path),
					zap.ByteString("stack", stack))

				body := gin.H{"error": "internal server error"}
				if !config.IsProduction() {
					body["stack"] = string(stack)
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, body)
			}
		}()
		c.Next()
	}
}

// RespondError maps err onto its HTTP status and writes {"error": ...}.
// Validation details are always included; the internal cause only outside
// production.
func RespondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	body := gin.H{"error": apperrors.PublicMessage(err)}

	if ve, ok := apperrors.IsValidationError(err); ok && len(ve.Details) > 0 {
		body["details"] = ve.Details
	}
	if !config.IsProduction() && status >= http.StatusInternalServerError {
		body["stack"] = err.Error()
	}

	logger := GetLogger()
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	} else {
		logger.Debug("Request rejected",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, body)
}

// JSONError sends a plain {"error": message} response.
func JSONError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
