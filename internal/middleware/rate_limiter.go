package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimiterConfig configures per-client rate limiting. A zero
// RequestsPerSecond disables the limiter.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
	// IdleTTL is how long an unused client limiter is kept.
	IdleTTL time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterStore struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	config  RateLimiterConfig
	now     func() time.Time
}

func newLimiterStore(config RateLimiterConfig) *limiterStore {
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	return &limiterStore{
		clients: make(map[string]*clientLimiter),
		config:  config,
		now:     time.Now,
	}
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	cl, ok := s.clients[key]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(s.config.RequestsPerSecond), s.config.Burst),
		}
		s.clients[key] = cl
	}
	cl.lastSeen = s.now()
	return cl.limiter
}

// evict drops limiters idle for longer than IdleTTL.
func (s *limiterStore) evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.config.IdleTTL)
	n := 0
	for key, cl := range s.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(s.clients, key)
			n++
		}
	}
	return n
}

func (s *limiterStore) sweep() {
	ticker := time.NewTicker(s.config.IdleTTL)
	defer ticker.Stop()
	for range ticker.C {
		if n := s.evict(); n > 0 {
			logrus.WithField("evicted", n).Debug("rate limiter sweep")
		}
	}
}

const maxRetryAfter = time.Hour

// RateLimiterMiddleware limits requests per client IP and answers 429 with a
// Retry-After hint when a client exceeds its budget. A burst below one is
// raised to one, otherwise no request could ever pass.
func RateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	if config.RequestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if config.Burst < 1 {
		config.Burst = 1
	}
	store := newLimiterStore(config)
	go store.sweep()

	return func(c *gin.Context) {
		limiter := store.get(c.ClientIP())
		if limiter.Allow() {
			c.Next()
			return
		}

		reservation := limiter.Reserve()
		delay := reservation.Delay()
		reservation.Cancel()
		if delay == rate.InfDuration || delay > maxRetryAfter {
			delay = maxRetryAfter
		}
		retryAfter := delay.Seconds()

		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter))))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "Rate limit exceeded. Please try again later.",
			"kind":        "rate_limited",
			"retry_after": retryAfter,
		})
	}
}
