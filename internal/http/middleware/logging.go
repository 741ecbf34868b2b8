package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Logging records one structured entry per request, tagged with a generated
// request id that is also echoed back to the client.
func Logging(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Writer.Header().Set("X-Request-Id", requestID)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		method := c.Request.Method
		path := c.Request.URL.Path
		clientIP := c.ClientIP()

		attrs := []slog.Attr{
			slog.String("requestId", requestID),
			slog.Int("status", status),
			slog.String("method", method),
			slog.String("path", path),
			slog.String("ip", clientIP),
			slog.Duration("latency", latency),
			slog.Int("bytes", c.Writer.Size()),
		}

		ctx := c.Request.Context()

		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
			logger.LogAttrs(ctx, slog.LevelError, "request completed with errors", attrs...)
			return
		}

		logger.LogAttrs(ctx, slog.LevelInfo, "request completed", attrs...)
	}
}
