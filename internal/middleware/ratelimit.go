// Package middleware holds HTTP wrappers for the metrics listener.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"rental-atlas/internal/logger"
)

// TokenBucket refills to capacity at the start of every second.
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	now      func() time.Time
	mu       sync.Mutex
}

func NewTokenBucket(perSecond int) *TokenBucket {
	return &TokenBucket{capacity: perSecond, tokens: perSecond, now: time.Now, lastSec: time.Now().Unix()}
}

func (tb *TokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := tb.now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimit answers 429 once qps requests have been served in the current
// second. qps <= 0 disables the limit.
func RateLimit(qps int, next http.Handler) http.Handler {
	if qps <= 0 {
		return next
	}
	tb := NewTokenBucket(qps)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.allow() {
			logger.L().Debug("rate_limited", "path", r.URL.Path, "ip", r.RemoteAddr)
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
