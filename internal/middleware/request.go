package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/yukikurage/goal-boards-api/internal/constants"
	"github.com/yukikurage/goal-boards-api/internal/logger"
	"github.com/yukikurage/goal-boards-api/internal/metrics"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an id, reusing the client's header when
// present, and makes it available to loggers through the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}

		c.Set(constants.ContextKeyRequestID, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Logger logs each request and records its duration.
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		// Unmatched routes share one label.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		metrics.RecordHTTPRequestDuration(c.Request.Method, path, strconv.Itoa(status), duration)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		}
		if userID, ok := GetUserID(c); ok {
			fields = append(fields, zap.Uint64("user_id", userID))
		}

		reqLog := logger.WithRequest(c.Request.Context(), log)
		switch {
		case len(c.Errors) > 0:
			reqLog.Error("request failed", append(fields, zap.String("errors", c.Errors.String()))...)
		case status >= 500:
			reqLog.Error("request", fields...)
		default:
			reqLog.Info("request", fields...)
		}
	}
}
