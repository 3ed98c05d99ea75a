package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

const (
	loginMaxAttempts = 10
	loginWindow      = 15 * time.Minute
)

// LoginRateLimit counts login attempts per client IP in a fixed Redis
// window and rejects with 429 once the cap is hit. Redis being down fails
// open; logins must not depend on the cache.
func LoginRateLimit(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("login:attempts:%s", c.ClientIP())

		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, loginWindow)
		}

		if count > loginMaxAttempts {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many login attempts, try again later",
			})
			return
		}
		c.Next()
	}
}
