package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"civictrack-be/apperrors"
	"civictrack-be/response"
)

// IssueRateLimiter caps how many issues a user may report per day. A nil
// client disables the limit.
func IssueRateLimiter(client *redis.Client, queuePrefix string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || limit <= 0 {
			c.Next()
			return
		}

		userID := c.GetString(UserIDKey)
		if userID == "" {
			response.Error(c, apperrors.Unauthenticated("User not authenticated"))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		// Create individual key for each user
		userKey := queuePrefix + ":" + userID

		count, err := client.Incr(ctx, userKey).Result()
		if err != nil {
			// fail open on Redis errors
			response.Logger(c).Warn("redis error incrementing count", zap.Error(err))
			c.Next()
			return
		}

		// Set TTL only for the first increment (when count = 1)
		if count == 1 {
			if err := client.Expire(ctx, userKey, 24*time.Hour).Err(); err != nil {
				response.Logger(c).Warn("redis error setting TTL", zap.Error(err))
			}
		}

		if count > int64(limit) {
			retryAfter, _ := client.TTL(ctx, userKey).Result()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       apperrors.CodeTooManyRequests,
				"message":     "Daily issue limit reached",
				"retry_after": retryAfter.Seconds(),
			})
			return
		}

		c.Next()
	}
}
