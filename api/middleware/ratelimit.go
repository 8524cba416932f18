package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/channelscope/config"
	"github.com/use-agent/channelscope/models"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet holds one token bucket per client IP.
type limiterSet struct {
	mu       sync.Mutex
	cfg      config.RateLimitConfig
	limiters map[string]*limiterEntry
}

func (s *limiterSet) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.limiters[ip]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(s.cfg.RequestsPerSecond), s.cfg.Burst),
		}
		s.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// evictIdle drops buckets not used since cutoff.
func (s *limiterSet) evictIdle(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ip, entry := range s.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(s.limiters, ip)
		}
	}
}

// RateLimit returns per-IP token-bucket rate limiting middleware powered by
// golang.org/x/time/rate. A disabled config yields a pass-through handler.
//
// Entries unused for 1 hour are evicted every 5 minutes.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RequestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}

	set := &limiterSet{cfg: cfg, limiters: make(map[string]*limiterEntry)}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			set.evictIdle(time.Now().Add(-1 * time.Hour))
		}
	}()

	return func(c *gin.Context) {
		if !set.get(c.ClientIP()).Allow() {
			se := models.NewScrapeError(models.ErrCodeRateLimited, models.RateLimitedMessage, nil)
			c.AbortWithStatusJSON(se.HTTPStatus(), se.ToResponse())
			return
		}
		c.Next()
	}
}
