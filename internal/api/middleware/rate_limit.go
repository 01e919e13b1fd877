package middleware

import (
	"fmt"
	"math"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"recipe-explorer/internal/pkg/common"
)

// RateLimit 限流中間件，window 內最多 requests 次請求
func RateLimit(requests int, window time.Duration, onReject func()) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Every(window/time.Duration(requests)), requests)
	retryAfter := int(math.Ceil(window.Seconds() / float64(requests)))
	if retryAfter < 1 {
		retryAfter = 1
	}

	return func(c *gin.Context) {
		if !limiter.Allow() {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			if onReject != nil {
				onReject()
			}

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(429, common.NewErrorResponse(
				common.ErrTooManyRequests.WithDetails(map[string]any{"retry_after": retryAfter}),
			))
			return
		}

		c.Next()
	}
}
