package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the per-client rate limiter.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained refill rate of each client's bucket.
	RequestsPerSecond float64
	// Burst is the bucket capacity.
	Burst int
}

const (
	bucketSweepInterval = 5 * time.Minute
	bucketIdleTTL       = 10 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterPool hands out one token bucket per client IP. Idle buckets are
// swept opportunistically on take, so the pool needs no background
// goroutine and dies with its middleware.
type limiterPool struct {
	cfg RateLimitConfig

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newLimiterPool(cfg RateLimitConfig) *limiterPool {
	return &limiterPool{cfg: cfg, buckets: make(map[string]*bucket), lastSweep: time.Now()}
}

func (p *limiterPool) take(ip string, now time.Time) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if now.Sub(p.lastSweep) >= bucketSweepInterval {
		for key, b := range p.buckets {
			if now.Sub(b.lastSeen) > bucketIdleTTL {
				delete(p.buckets, key)
			}
		}
		p.lastSweep = now
	}

	b, ok := p.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(p.cfg.RequestsPerSecond), p.cfg.Burst)}
		p.buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter
}

func (p *limiterPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets)
}

// RateLimiter enforces a token-bucket limit per client IP. Requests over the
// limit get 429 Too Many Requests with a Retry-After hint.
func RateLimiter(cfg RateLimitConfig) func(http.Handler) http.Handler {
	pool := newLimiterPool(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := pool.take(clientIP(r), time.Now())

			res := limiter.Reserve()
			if !res.OK() {
				rejectRateLimited(w, 0)
				return
			}
			if delay := res.Delay(); delay > 0 {
				res.Cancel()
				rejectRateLimited(w, int(delay.Seconds())+1)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr. X-Forwarded-For is deliberately
// ignored: trusting it would let clients spoof their way past the limiter.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func rejectRateLimited(w http.ResponseWriter, retryAfterSecs int) {
	if retryAfterSecs > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSecs))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
}
