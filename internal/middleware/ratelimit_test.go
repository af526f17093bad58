package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterRejectsOverBurst(t *testing.T) {
	handler := RateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 2})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	do := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.9:4242"
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do().Code)
	assert.Equal(t, http.StatusOK, do().Code)

	rec := do()
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestRateLimiterTracksClientsSeparately(t *testing.T) {
	handler := RateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	do := func(addr string) int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("203.0.113.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, do("203.0.113.1:1001"))
	assert.Equal(t, http.StatusOK, do("203.0.113.2:1000"))
}

func TestLimiterPoolSweepsIdleBuckets(t *testing.T) {
	pool := newLimiterPool(RateLimitConfig{RequestsPerSecond: 1, Burst: 1})

	start := time.Now()
	pool.take("10.0.0.1", start)
	pool.take("10.0.0.2", start)
	require.Equal(t, 2, pool.size())

	// First client stays active, second goes idle past the TTL. The next
	// take after the sweep interval evicts only the idle one.
	pool.take("10.0.0.1", start.Add(4*time.Minute))
	pool.take("10.0.0.3", start.Add(11*time.Minute))

	assert.Equal(t, 2, pool.size())
	pool.mu.Lock()
	_, active := pool.buckets["10.0.0.1"]
	_, idle := pool.buckets["10.0.0.2"]
	pool.mu.Unlock()
	assert.True(t, active, "recently seen bucket survives the sweep")
	assert.False(t, idle, "idle bucket is evicted")
}

func TestClientIPStripsPort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:9999"
	assert.Equal(t, "198.51.100.7", clientIP(req))

	req.RemoteAddr = "no-port-here"
	assert.Equal(t, "no-port-here", clientIP(req))
}
