package main

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// rateLimiterStore keeps one token bucket per client IP.
type rateLimiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
	counter  atomic.Int64
}

// newRateLimiterStore returns nil when rps <= 0, which disables limiting.
func newRateLimiterStore(rps, burst int) *rateLimiterStore {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = rps
	}
	return &rateLimiterStore{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (s *rateLimiterStore) getLimiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[ip]
	if !ok {
		l = rate.NewLimiter(s.rps, s.burst)
		s.limiters[ip] = l
	}

	// Every 1000 lookups, drop idle clients so the map stays bounded.
	if s.counter.Add(1)%1000 == 0 {
		s.cleanup()
	}
	return l
}

// cleanup removes IPs whose bucket is full again. Caller holds s.mu.
func (s *rateLimiterStore) cleanup() {
	for ip, l := range s.limiters {
		if l.Tokens() >= float64(s.burst) {
			delete(s.limiters, ip)
		}
	}
}

// middleware rejects requests over the per-IP rate with 429. A nil store
// passes everything through.
func (s *rateLimiterStore) middleware() gin.HandlerFunc {
	if s == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if !s.getLimiter(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			apiError(c, http.StatusTooManyRequests, "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}
