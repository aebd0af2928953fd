package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// LoggerMiddleware makes the service logger available to handlers, scoped
// with the request id.
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := logger
		if reqID := RequestIDFrom(c); reqID != "" {
			l = l.With("request_id", reqID)
		}
		c.Set("logger", l)
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, falling back to the default.
func LoggerFrom(c *gin.Context) *slog.Logger {
	if v, ok := c.Get("logger"); ok {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}
