package server

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/54b3r/edurec-go/internal/logging"
)

const (
	// defaultRateLimit is the sustained recommendations/second allowed per
	// client when Config.RateLimit is zero.
	defaultRateLimit = 10
	// defaultRateBurst is the per-client burst when Config.RateBurst is zero.
	defaultRateBurst = 20
	// limiterIdleTTL is how long an idle client's bucket is kept.
	limiterIdleTTL = 5 * time.Minute
	// evictInterval is how often idle buckets are swept.
	evictInterval = time.Minute
)

// clientBucket is one client's token bucket and the last time it was used.
type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter throttles the recommendation endpoints per client IP. Every
// recommendation can trigger a paid model call, so it sits in front of them
// only; catalogue listings and probes are not limited.
type rateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*clientBucket
	rps     rate.Limit
	burst   int
	// onReject is called for every throttled request. May be nil.
	onReject func(r *http.Request)
}

// newRateLimiter constructs a rateLimiter and starts its eviction goroutine,
// which exits when the returned stop function is called.
func newRateLimiter(rps float64, burst int, onReject func(r *http.Request)) (*rateLimiter, func()) {
	rl := &rateLimiter{
		buckets:  make(map[string]*clientBucket),
		rps:      rate.Limit(rps),
		burst:    burst,
		onReject: onReject,
	}

	stopCh := make(chan struct{})
	var once sync.Once
	go rl.evictLoop(stopCh)

	return rl, func() { once.Do(func() { close(stopCh) }) }
}

// bucket returns the limiter for ip, creating it on first use.
func (rl *rateLimiter) bucket(ip string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter
}

func (rl *rateLimiter) evictLoop(stopCh <-chan struct{}) {
	ticker := time.NewTicker(evictInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			rl.evict(now)
		}
	}
}

// evict drops buckets idle for longer than limiterIdleTTL as of now.
func (rl *rateLimiter) evict(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-limiterIdleTTL)
	n := 0
	for ip, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, ip)
			n++
		}
	}
	return n
}

// size returns the number of tracked clients.
func (rl *rateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// middleware rejects over-limit requests with 429, a Retry-After header
// (whole seconds until the next token) and a JSON error body.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		now := time.Now()
		limiter := rl.bucket(ip, now)

		if !limiter.AllowN(now, 1) {
			logging.FromContext(r.Context()).Warn("rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path),
			)
			if rl.onReject != nil {
				rl.onReject(r)
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(limiter, now)))
			writeJSON(w, r, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// retryAfterSeconds estimates how long until limiter has a whole token,
// rounded up and never less than one second.
func retryAfterSeconds(limiter *rate.Limiter, now time.Time) int {
	missing := 1 - limiter.TokensAt(now)
	if missing <= 0 || limiter.Limit() <= 0 {
		return 1
	}
	secs := math.Ceil(missing / float64(limiter.Limit()))
	if secs < 1 || math.IsInf(secs, 0) || secs > math.MaxInt32 {
		return 1
	}
	return int(secs)
}

// clientIP returns the host part of RemoteAddr. X-Forwarded-For is not
// trusted: the server binds to loopback unless told otherwise.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
