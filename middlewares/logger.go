package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"civictrack-be/response"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an id and a logger carrying it.
func RequestID(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Set(response.LoggerKey, logger.With(zap.String("request_id", id)))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func GinLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")),
		}

		if len(c.Errors) > 0 {
			logger.Error("Request error", append(fields, zap.String("errors", c.Errors.String()))...)
		} else {
			logger.Info("Request", fields...)
		}
	}
}
