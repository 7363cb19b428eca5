package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
)

// bucketSet holds one token bucket per key and evicts keys idle for longer
// than ttl.
type bucketSet struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    rate.Limit
	burst   int
	stop    chan struct{}
	once    sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newBucketSet(rps float64, burst int, interval, ttl time.Duration) *bucketSet {
	s := &bucketSet{
		buckets: make(map[string]*bucket),
		rate:    rate.Limit(rps),
		burst:   burst,
		stop:    make(chan struct{}),
	}
	if interval > 0 && ttl > 0 {
		go s.evict(interval, ttl)
	}
	return s
}

func (s *bucketSet) allow(key string) bool {
	s.mu.Lock()
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.buckets[key] = b
	}
	b.lastSeen = time.Now()
	s.mu.Unlock()

	return b.limiter.Allow()
}

func (s *bucketSet) evict(interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for key, b := range s.buckets {
				if now.Sub(b.lastSeen) > ttl {
					delete(s.buckets, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *bucketSet) close() {
	s.once.Do(func() { close(s.stop) })
}

// RateLimiter limits requests per client IP.
type RateLimiter struct {
	set *bucketSet
}

// RateLimiterConfig holds rate limiter configuration
type RateLimiterConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	CleanupInterval   time.Duration // how often idle clients are evicted
	TTL               time.Duration // idle time before eviction
}

func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		CleanupInterval:   time.Minute,
		TTL:               3 * time.Minute,
	}
}

func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		set: newBucketSet(cfg.RequestsPerSecond, cfg.BurstSize, cfg.CleanupInterval, cfg.TTL),
	}
}

// Allow reports whether another request from ip fits in its bucket.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.set.allow(ip)
}

// Stop ends idle-client eviction.
func (rl *RateLimiter) Stop() {
	rl.set.close()
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(getClientIP(r)) {
			writeRateLimited(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getClientIP returns the peer address. Forwarding headers only count once
// RealIP has vetted them and rewritten RemoteAddr.
func getClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// RateLimitByKey limits requests per arbitrary key, such as a user id.
type RateLimitByKey struct {
	set *bucketSet
}

func NewRateLimitByKey(requestsPerSecond float64, burst int) *RateLimitByKey {
	return &RateLimitByKey{
		set: newBucketSet(requestsPerSecond, burst, time.Minute, 5*time.Minute),
	}
}

func (rl *RateLimitByKey) Allow(key string) bool {
	return rl.set.allow(key)
}

// Stop ends idle-key eviction.
func (rl *RateLimitByKey) Stop() {
	rl.set.close()
}

// PerUser limits by the authenticated user id, falling back to the client IP.
// It must run after JWTMiddleware. Used on the export and import routes.
func (rl *RateLimitByKey) PerUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := getClientIP(r)
		if claims, ok := GetClaims(r.Context()); ok {
			key = "user:" + claims.UserID
		}

		if !rl.Allow(key) {
			writeRateLimited(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeRateLimited(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "1")
	writeError(w, apperrors.NewRateLimitError())
}
