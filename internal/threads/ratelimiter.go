// path: internal/threads/ratelimiter.go
package threads

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// accountRateLimit is Threads' published per-account throughput cap.
const (
	accountRateLimit = rate.Every(24 * time.Hour / 250) // 250 requests per day
	accountBurst     = 10
)

// RateLimiter hands out one token-bucket limiter per Threads account, so a
// slow account never starves another's publish calls.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
}

// NewRateLimiter builds an empty per-account limiter pool.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{limiters: make(map[string]*rate.Limiter)}
}

func (rl *RateLimiter) limiterFor(accountID string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[accountID]
	rl.mu.RUnlock()
	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if limiter, exists := rl.limiters[accountID]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(accountRateLimit, accountBurst)
	rl.limiters[accountID] = limiter
	return limiter
}

// Wait blocks until accountID's bucket allows another call.
func (rl *RateLimiter) Wait(ctx context.Context, accountID string) error {
	return rl.limiterFor(accountID).Wait(ctx)
}
