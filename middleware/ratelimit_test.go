package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	r := gin.New()
	r.POST("/login", LoginRateLimit(rdb), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return r
}

func attempt(router *gin.Engine) int {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestLoginRateLimitCapsAttempts(t *testing.T) {
	router := newLimitedRouter(t)

	for i := 0; i < loginMaxAttempts; i++ {
		assert.Equal(t, http.StatusOK, attempt(router))
	}
	assert.Equal(t, http.StatusTooManyRequests, attempt(router))
	assert.Equal(t, http.StatusTooManyRequests, attempt(router))
}

func TestLoginRateLimitFailsOpenWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Client pointed at nothing: every Redis call errors.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})

	r := gin.New()
	r.POST("/login", LoginRateLimit(rdb), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	assert.Equal(t, http.StatusOK, attempt(r))
}
