package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"claims_crm_go/services"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig configures a fixed-window limiter
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	// KeyFunc identifies the caller; the client IP when nil
	KeyFunc func(c echo.Context) string
	Message string
}

type window struct {
	hits    int
	resetAt time.Time
}

// RateLimiter counts requests per key in fixed windows. Expired windows are
// swept while serving requests, so no goroutine is needed.
type RateLimiter struct {
	config    RateLimitConfig
	now       func() time.Time
	mu        sync.Mutex
	windows   map[string]*window
	nextSweep time.Time
}

// NewRateLimiter creates a limiter, filling in defaults
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c echo.Context) string { return c.RealIP() }
	}
	if config.Message == "" {
		config.Message = "Too many requests. Please try again later."
	}
	return &RateLimiter{
		config:  config,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// allow records a hit for key. When the window is full it reports the time
// left until it resets.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.After(rl.nextSweep) {
		for k, w := range rl.windows {
			if !now.Before(w.resetAt) {
				delete(rl.windows, k)
			}
		}
		rl.nextSweep = now.Add(rl.config.Window)
	}

	w, ok := rl.windows[key]
	if !ok || !now.Before(w.resetAt) {
		rl.windows[key] = &window{hits: 1, resetAt: now.Add(rl.config.Window)}
		return true, 0
	}
	if w.hits >= rl.config.Requests {
		return false, w.resetAt.Sub(now)
	}
	w.hits++
	return true, 0
}

// Middleware rejects callers over the limit with 429 and a Retry-After header
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rl.config.KeyFunc(c)
			ok, retryAfter := rl.allow(key)
			if !ok {
				services.LogSecurityEvent("RATE_LIMITED", "", key+" "+c.Request().Method+" "+c.Path())
				secs := int(retryAfter.Round(time.Second) / time.Second)
				if secs < 1 {
					secs = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return echo.NewHTTPError(http.StatusTooManyRequests, rl.config.Message)
			}
			return next(c)
		}
	}
}

// LoginRateLimiter allows 5 login attempts per minute per IP across the
// admin and client login endpoints
var LoginRateLimiter = NewRateLimiter(RateLimitConfig{
	Requests: 5,
	Window:   time.Minute,
	Message:  "Too many login attempts. Please wait a minute before trying again.",
})
