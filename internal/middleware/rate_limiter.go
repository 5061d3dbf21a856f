package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/outisoft/ambar-pdv/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// slidingLimiter tracks request counts per IP within a fixed window.
// Each limiter owns its map and purge goroutine, so the login limiter and
// the general API limiter never contend on the same lock.
type slidingLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   int
	window  time.Duration
	message string
}

type limiterEntry struct {
	count     int
	windowEnd time.Time
}

const purgeInterval = 5 * time.Minute

func newSlidingLimiter(limit int, window time.Duration, message string) *slidingLimiter {
	l := &slidingLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   limit,
		window:  window,
		message: message,
	}
	go l.purgeLoop()
	return l
}

func (l *slidingLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		l.mu.Lock()
		entry, exists := l.entries[ip]
		if !exists {
			entry = &limiterEntry{}
			l.entries[ip] = entry
		}

		now := time.Now()
		if now.After(entry.windowEnd) {
			entry.count = 0
			entry.windowEnd = now.Add(l.window)
		}
		entry.count++
		over := entry.count > l.limit
		retryAt := entry.windowEnd
		l.mu.Unlock()

		if over {
			c.Header("Retry-After", retryAt.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.message))
			return
		}
		c.Next()
	}
}

// purgeLoop removes expired entries so IPs that never return don't leak memory.
func (l *slidingLimiter) purgeLoop() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		l.mu.Lock()
		purged := 0
		for ip, entry := range l.entries {
			if now.After(entry.windowEnd) {
				delete(l.entries, ip)
				purged++
			}
		}
		remaining := len(l.entries)
		l.mu.Unlock()

		if purged > 0 {
			log.Debug().
				Int("purged", purged).
				Int("remaining", remaining).
				Msg("rate limiter entries purged")
		}
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newSlidingLimiter(20, time.Minute, "Demasiados intentos de login. Intente en 1 minuto.").middleware()
}

// RateLimiter returns a general-purpose sliding-window rate limiter for the
// whole API, e.g. 200 requests per minute per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newSlidingLimiter(limit, window, "Demasiadas solicitudes. Intente nuevamente en un momento.").middleware()
}
