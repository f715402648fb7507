package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/vivaha/backend/internal/models"
)

type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(rps int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    rps * 2,
	}
}

func (rl *RateLimiter) getLimiter(accountID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[accountID]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[accountID] = limiter
	}

	return limiter
}

// Cleanup removes old limiters
func (rl *RateLimiter) Cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		for range ticker.C {
			rl.mu.Lock()
			// Simple cleanup - in production, track last access time
			if len(rl.limiters) > 10000 {
				rl.limiters = make(map[string]*rate.Limiter)
			}
			rl.mu.Unlock()
		}
	}()
}

// RateLimitMiddleware limits requests per account
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := AccountID(c)
		if accountID == "" {
			c.Next()
			return
		}

		limiter := rl.getLimiter(accountID)
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, models.Envelope{Success: false, Message: "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
