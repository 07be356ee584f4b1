package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rateEntry tracks request counts per IP within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
}

type rateLimiter struct {
	limit  int
	window time.Duration

	mu        sync.Mutex
	entries   map[string]*rateEntry
	nextPurge time.Time
}

// RateLimiter limits each client IP to limit requests per window. Expired
// entries are purged inline every purgeInterval.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	rl := &rateLimiter{limit: limit, window: window, entries: make(map[string]*rateEntry)}
	return func(c *gin.Context) {
		ok, retry := rl.allow(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", retry.Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.WithCode("demasiadas_solicitudes", "Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

const purgeInterval = 5 * time.Minute

func (rl *rateLimiter) allow(ip string, now time.Time) (bool, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.After(rl.nextPurge) {
		rl.purge(now)
		rl.nextPurge = now.Add(purgeInterval)
	}

	entry, ok := rl.entries[ip]
	if !ok || now.After(entry.windowEnd) {
		entry = &rateEntry{windowEnd: now.Add(rl.window)}
		rl.entries[ip] = entry
	}
	entry.count++
	return entry.count <= rl.limit, entry.windowEnd
}

func (rl *rateLimiter) purge(now time.Time) {
	purged := 0
	for ip, entry := range rl.entries {
		if now.After(entry.windowEnd) {
			delete(rl.entries, ip)
			purged++
		}
	}
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(rl.entries)).Msg("rate limiter purged")
	}
}
