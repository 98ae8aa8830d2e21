package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carmarket-backend/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func setupTestMiddleware(t *testing.T) *gin.Engine {
	t.Helper()

	config := ratelimit.DefaultConfig()
	config.CleanupInterval = 0
	config.DefaultLimits["listings"] = ratelimit.RateLimit{RequestsPerMinute: 5, BurstSize: 5, WindowSize: time.Minute}
	config.DefaultLimits["chat_message"] = ratelimit.RateLimit{RequestsPerMinute: 1, BurstSize: 1, WindowSize: time.Minute}

	limiter := ratelimit.NewMemoryRateLimiter(config)
	t.Cleanup(limiter.Close)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(limiter, config, zerolog.Nop()))

	router.GET("/api/v1/listings", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"listings": []string{}})
	})
	router.POST("/api/v1/chat/sessions/:id/messages", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return router
}

func doRequest(router *gin.Engine, method, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Forwarded-For", ip)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware_Headers(t *testing.T) {
	router := setupTestMiddleware(t)

	w := doRequest(router, "GET", "/api/v1/listings", "192.168.1.1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Window"))
}

func TestRateLimitMiddleware_RateLimitExceeded(t *testing.T) {
	router := setupTestMiddleware(t)

	w1 := doRequest(router, "POST", "/api/v1/chat/sessions/abc/messages", "192.168.1.2")
	assert.Equal(t, http.StatusOK, w1.Code)

	w2 := doRequest(router, "POST", "/api/v1/chat/sessions/def/messages", "192.168.1.2")
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
	assert.NotEmpty(t, w2.Header().Get("Retry-After"))
	assert.Contains(t, w2.Body.String(), "RATE_LIMIT_EXCEEDED")

	// Other categories are unaffected.
	w3 := doRequest(router, "GET", "/api/v1/listings", "192.168.1.2")
	assert.Equal(t, http.StatusOK, w3.Code)
}

func TestRateLimitMiddleware_DifferentClients(t *testing.T) {
	router := setupTestMiddleware(t)

	assert.Equal(t, http.StatusOK, doRequest(router, "POST", "/api/v1/chat/sessions/a/messages", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "POST", "/api/v1/chat/sessions/a/messages", "10.0.0.2").Code)
}

func TestGetClientID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "ip:203.0.113.9", getClientID(c))

	c.Set(ContextKeyUserID, "507f1f77bcf86cd799439011")
	assert.Equal(t, "user:507f1f77bcf86cd799439011", getClientID(c))
}
