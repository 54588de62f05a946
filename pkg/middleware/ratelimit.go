package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ctfplayground/backend/internal/metrics"
	"github.com/ctfplayground/backend/pkg/config"
)

// SubmissionLimiter bounds flag submissions per team to a fixed number of
// attempts inside a strict trailing window. A token bucket would let short
// bursts through after idle periods, so attempt timestamps are kept
// explicitly: an attempt is admitted only if fewer than max attempts
// happened in the last window, counting the attempt being made.
type SubmissionLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time

	stopCleanup chan struct{}
}

// NewSubmissionLimiter creates a submission limiter and starts its
// background cleanup.
func NewSubmissionLimiter(maxAttempts int, window time.Duration) *SubmissionLimiter {
	l := &SubmissionLimiter{
		attempts:    make(map[string][]time.Time),
		max:         maxAttempts,
		window:      window,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

// Allow records an attempt for key and reports whether it is admitted.
// Rejected attempts are not recorded, so a client hammering the endpoint
// does not push its own window forward.
func (l *SubmissionLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.attempts[key][:0]
	for _, t := range l.attempts[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.max {
		l.attempts[key] = recent
		return false
	}

	l.attempts[key] = append(recent, now)
	return true
}

// Reset clears the attempt history for key.
func (l *SubmissionLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}

func (l *SubmissionLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

func (l *SubmissionLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for key, times := range l.attempts {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(l.attempts, key)
		}
	}
}

// Stop terminates the cleanup goroutine.
func (l *SubmissionLimiter) Stop() {
	close(l.stopCleanup)
}

// SubmissionRateLimit enforces the submission limiter per authenticated
// subject. It must run after the authorization gate so the key is the
// team's identity, not a spoofable address.
func SubmissionRateLimit(limiter *SubmissionLimiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(CtxSubjectID)
		if key == "" {
			key = c.ClientIP()
		}

		if !limiter.Allow(key) {
			metrics.RateLimitRejections.WithLabelValues("submission").Inc()
			logger.Warn("Submission rate limit exceeded",
				zap.String("subject_id", key),
				zap.String("ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many submissions. Please slow down.",
			})
			return
		}

		c.Next()
	}
}

// LoginLimiter throttles authentication attempts per client address with a
// token bucket, escalating to a temporary lockout after repeated failures.
type LoginLimiter struct {
	mu       sync.Mutex
	clients  map[string]*loginClient
	rate     rate.Limit
	burst    int
	lockout  time.Duration
	maxFails int
}

type loginClient struct {
	limiter     *rate.Limiter
	failures    int
	lockedUntil time.Time
	lastSeen    time.Time
}

// NewLoginLimiter creates a login limiter from configuration and starts
// its idle-entry cleanup.
func NewLoginLimiter(cfg *config.LoginLimitConfig) *LoginLimiter {
	l := &LoginLimiter{
		clients:  make(map[string]*loginClient),
		rate:     rate.Limit(float64(cfg.MaxAttempts) / float64(cfg.WindowSeconds)),
		burst:    cfg.MaxAttempts,
		lockout:  time.Duration(cfg.LockoutSeconds) * time.Second,
		maxFails: cfg.MaxAttempts,
	}

	go l.cleanupLoop()

	return l
}

func (l *LoginLimiter) client(key string) *loginClient {
	c, ok := l.clients[key]
	if !ok {
		c = &loginClient{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = time.Now()
	return c
}

// Allow reports whether a login attempt from key may proceed.
func (l *LoginLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.client(key)
	if time.Now().Before(c.lockedUntil) {
		return false
	}

	return c.limiter.Allow()
}

// RecordFailure counts a failed login for key and locks the client out
// once failures reach the threshold.
func (l *LoginLimiter) RecordFailure(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.client(key)
	c.failures++
	if c.failures >= l.maxFails {
		c.lockedUntil = time.Now().Add(l.lockout)
		c.failures = 0
	}
}

// RecordSuccess clears the failure count for key.
func (l *LoginLimiter) RecordSuccess(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.client(key)
	c.failures = 0
}

func (l *LoginLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		cutoff := time.Now().Add(-30 * time.Minute)
		for key, c := range l.clients {
			if c.lastSeen.Before(cutoff) && time.Now().After(c.lockedUntil) {
				delete(l.clients, key)
			}
		}
		l.mu.Unlock()
	}
}

// LoginRateLimit guards authentication endpoints with the login limiter,
// keyed by client address.
func LoginRateLimit(limiter *LoginLimiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()

		if !limiter.Allow(key) {
			metrics.RateLimitRejections.WithLabelValues("login").Inc()
			logger.Warn("Login rate limit exceeded",
				zap.String("ip", key),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many login attempts. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
