package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/furqan-uddin/SkillForge-Backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiterConfig defines rate limiting rules.
type RateLimiterConfig struct {
	MaxRequests int           // requests allowed per window
	Window      time.Duration
	BlockTime   time.Duration // how long a caller stays blocked after exceeding the limit
}

// RateLimiter counts requests per caller in Redis. Authenticated callers are
// keyed by user ID, everyone else by client IP.
type RateLimiter struct {
	redis  *redis.Client
	prefix string
	config RateLimiterConfig
}

func NewRateLimiter(redisClient *redis.Client, prefix string, config RateLimiterConfig) *RateLimiter {
	if config.BlockTime <= 0 {
		config.BlockTime = config.Window
	}
	return &RateLimiter{
		redis:  redisClient,
		prefix: prefix,
		config: config,
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := callerKey(c)

		allowed, retryAfter, err := rl.CheckLimit(c.Request.Context(), key)
		if err != nil {
			// Fail open: an unavailable Redis must not take the API down.
			logger.Log.Warn("Rate limit check failed",
				zap.String("key", key),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			seconds := int(retryAfter.Round(time.Second).Seconds())
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests. Please try again later.",
				"code":        "rate_limited",
				"retry_after": seconds,
			})
			return
		}

		c.Next()
	}
}

func callerKey(c *gin.Context) string {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uuid.UUID); ok && id != uuid.Nil {
			return "user:" + id.String()
		}
	}
	return "ip:" + c.ClientIP()
}

// CheckLimit counts one request for key with INCR and EXPIRE. Once the limit
// is exceeded the key is blocked for BlockTime.
func (rl *RateLimiter) CheckLimit(ctx context.Context, key string) (bool, time.Duration, error) {
	blockKey := fmt.Sprintf("%s:blocked:%s", rl.prefix, key)
	if ttl, err := rl.redis.TTL(ctx, blockKey).Result(); err != nil {
		return false, 0, err
	} else if ttl > 0 {
		return false, ttl, nil
	}

	countKey := fmt.Sprintf("%s:count:%s", rl.prefix, key)
	count, err := rl.redis.Incr(ctx, countKey).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := rl.redis.Expire(ctx, countKey, rl.config.Window).Err(); err != nil {
			return false, 0, err
		}
	}

	if count > int64(rl.config.MaxRequests) {
		if err := rl.redis.Set(ctx, blockKey, 1, rl.config.BlockTime).Err(); err != nil {
			return false, 0, err
		}
		return false, rl.config.BlockTime, nil
	}

	return true, 0, nil
}

// Reset clears the counter and any block for key.
func (rl *RateLimiter) Reset(ctx context.Context, key string) error {
	return rl.redis.Del(ctx,
		fmt.Sprintf("%s:count:%s", rl.prefix, key),
		fmt.Sprintf("%s:blocked:%s", rl.prefix, key),
	).Err()
}
