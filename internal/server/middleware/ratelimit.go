package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

// ByRemoteAddr keys requests by r.RemoteAddr, which chi's RealIP middleware
// rewrites from proxy headers.
func ByRemoteAddr(r *http.Request) string {
	return r.RemoteAddr
}

// RateLimit applies per-key rate limiting. Requests with an empty key pass
// through. Stale entries are cleaned up every 10 minutes until ctx is done.
func RateLimit(ctx context.Context, requestsPerSecond float64, burst int, key KeyFunc) func(http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*clientLimiter)
	)

	// Background cleanup of stale limiters.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				mu.Lock()
				cutoff := time.Now().Add(-30 * time.Minute)
				for k, cl := range limiters {
					if cl.lastAccess.Before(cutoff) {
						delete(limiters, k)
					}
				}
				mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()

	limiterFor := func(k string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		cl, ok := limiters[k]
		if !ok {
			cl = &clientLimiter{
				limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
				lastAccess: time.Now(),
			}
			limiters[k] = cl
		} else {
			cl.lastAccess = time.Now()
		}
		return cl.limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiterFor(k).Allow() {
				http.Error(w, `{"title":"Too Many Requests","status":429,"detail":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
