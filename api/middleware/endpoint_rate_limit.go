package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PerRoute attaches a dedicated per-IP limiter to the routes it is
// mounted on, independent of the server-wide limit. Mounting one
// handler on several routes makes them share a budget.
func PerRoute(limit int, window time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(limit, window)

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded for this endpoint",
				"retry_after": window.Seconds(),
			})
			return
		}
		c.Next()
	}
}

// AuthRateLimiter keeps login attempts to 5 per minute per IP.
func AuthRateLimiter() gin.HandlerFunc {
	return PerRoute(5, time.Minute)
}
