package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(s *rateLimiterStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", s.middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	r := newLimitedRouter(newRateLimiterStore(1, 2))

	codes := make([]int, 3)
	var last *httptest.ResponseRecorder
	for i := range codes {
		last = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(last, req)
		codes[i] = last.Code
	}

	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent {
		t.Errorf("first two requests = %v, want 204 within burst", codes[:2])
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", codes[2])
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on 429")
	}
}

func TestRateLimiter_PerIP(t *testing.T) {
	r := newLimitedRouter(newRateLimiterStore(1, 1))

	for _, ip := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			t.Errorf("first request from %s = %d, want 204", ip, w.Code)
		}
	}
}

func TestRateLimiter_DisabledWhenRPSZero(t *testing.T) {
	s := newRateLimiterStore(0, 10)
	if s != nil {
		t.Fatal("expected nil store for rps=0")
	}
	r := newLimitedRouter(s)
	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusNoContent {
			t.Fatalf("request %d = %d, want 204 with limiting disabled", i, w.Code)
		}
	}
}

func TestRateLimiter_BurstDefaultsToRPS(t *testing.T) {
	if s := newRateLimiterStore(3, 0); s.burst != 3 {
		t.Errorf("burst = %d, want 3", s.burst)
	}
}
