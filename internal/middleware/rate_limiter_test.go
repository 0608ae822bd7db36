package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRateLimiter(t *testing.T, maxRequests int, window, block time.Duration) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	rl := NewRateLimiter(client, "ai", RateLimiterConfig{
		MaxRequests: maxRequests,
		Window:      window,
		BlockTime:   block,
	})
	return rl, mr
}

func newLimitedRouter(rl *RateLimiter, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if userID != uuid.Nil {
		router.Use(func(c *gin.Context) {
			c.Set("user_id", userID)
			c.Next()
		})
	}
	router.Use(rl.Middleware())
	router.POST("/api/interview", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})
	return router
}

func doRequest(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/interview", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsRequestsUnderLimit(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 5, time.Minute, 5*time.Minute)
	router := newLimitedRouter(rl, uuid.Nil)

	for i := 0; i < 5; i++ {
		w := doRequest(router, "192.168.1.1:12345")
		assert.Equal(t, http.StatusOK, w.Code, "request %d should succeed", i+1)
	}
}

func TestRateLimiter_BlocksRequestsOverLimit(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 3, time.Minute, 5*time.Minute)
	router := newLimitedRouter(rl, uuid.Nil)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, doRequest(router, "192.168.1.1:12345").Code)
	}

	w := doRequest(router, "192.168.1.1:12345")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "300", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limited")
}

func TestRateLimiter_DifferentIPsIndependent(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 2, time.Minute, time.Minute)
	router := newLimitedRouter(rl, uuid.Nil)

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, doRequest(router, "192.168.1.1:12345").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "192.168.1.1:12345").Code)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router, "192.168.1.2:12345").Code, "second IP request %d", i+1)
	}
}

func TestRateLimiter_KeysAuthenticatedCallersByUser(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 2, time.Minute, time.Minute)
	router := newLimitedRouter(rl, uuid.New())

	// Same user from different addresses shares one budget.
	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.2:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "10.0.0.3:1").Code)
}

func TestRateLimiter_BlockOutlastsWindow(t *testing.T) {
	rl, mr := setupTestRateLimiter(t, 1, time.Minute, 5*time.Minute)
	ctx := context.Background()

	allowed, _, err := rl.CheckLimit(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, retryAfter, err := rl.CheckLimit(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 5*time.Minute, retryAfter)

	mr.FastForward(2 * time.Minute)
	allowed, retryAfter, err = rl.CheckLimit(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, allowed, "still blocked after the counting window expired")
	assert.Greater(t, retryAfter, time.Duration(0))

	mr.FastForward(4 * time.Minute)
	allowed, _, err = rl.CheckLimit(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_Reset(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 1, time.Minute, time.Minute)
	ctx := context.Background()

	_, _, err := rl.CheckLimit(ctx, "ip:5.6.7.8")
	require.NoError(t, err)
	allowed, _, err := rl.CheckLimit(ctx, "ip:5.6.7.8")
	require.NoError(t, err)
	require.False(t, allowed)

	require.NoError(t, rl.Reset(ctx, "ip:5.6.7.8"))
	allowed, _, err = rl.CheckLimit(ctx, "ip:5.6.7.8")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_FailsOpenWhenRedisIsDown(t *testing.T) {
	rl, mr := setupTestRateLimiter(t, 1, time.Minute, time.Minute)
	router := newLimitedRouter(rl, uuid.Nil)
	mr.Close()

	assert.Equal(t, http.StatusOK, doRequest(router, "192.168.1.9:1").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "192.168.1.9:1").Code)
}
