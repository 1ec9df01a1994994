package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSubmitRateLimiter_Allow(t *testing.T) {
	rl := NewSubmitRateLimiter(60, 2)
	now := time.Date(2025, 10, 21, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"), "burst exhausted")
	assert.True(t, rl.Allow("2.2.2.2"), "limits are per IP")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("1.1.1.1"), "one token per second refills")
}

func TestSubmitRateLimiter_Cleanup(t *testing.T) {
	rl := NewSubmitRateLimiter(10, 1)
	now := time.Date(2025, 10, 21, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("1.1.1.1")
	now = now.Add(5 * time.Minute)
	rl.Allow("2.2.2.2")
	now = now.Add(6 * time.Minute)

	assert.Equal(t, 1, rl.Cleanup())
	assert.Equal(t, 0, rl.Cleanup())
}

func TestSubmitRateLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewSubmitRateLimiter(1, 1)

	r := gin.New()
	r.POST("/submit", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submit", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submit", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}
