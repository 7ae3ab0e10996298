package middleware

import (
	"NutriLens/pkg/response"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"net/http"
	"sync"
	"time"
)

var (
	ErrTooManyRequests = response.NewError(http.StatusTooManyRequests, "too many requests")
)

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per client IP. Buckets idle for longer
// than idleTTL are swept so the map tracks active clients only.
type rateLimiter struct {
	clients   map[string]*clientLimiter
	rate      rate.Limit
	burstSize int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
	mutex     sync.Mutex
}

func newRateLimiter(reqRate rate.Limit, burstSize int) *rateLimiter {
	return &rateLimiter{
		clients:   make(map[string]*clientLimiter),
		rate:      reqRate,
		burstSize: burstSize,
		idleTTL:   limiterIdleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (r *rateLimiter) allow(ip string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) >= limiterSweepInterval {
		r.sweep(now)
	}

	c, exist := r.clients[ip]
	if !exist {
		c = &clientLimiter{limiter: rate.NewLimiter(r.rate, r.burstSize)}
		r.clients[ip] = c
	}
	c.lastSeen = now

	return c.limiter.AllowN(now, 1)
}

func (r *rateLimiter) sweep(now time.Time) {
	for ip, c := range r.clients {
		if now.Sub(c.lastSeen) > r.idleTTL {
			delete(r.clients, ip)
		}
	}
	r.lastSweep = now
}

func (r *rateLimiter) size() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return len(r.clients)
}

func (m *middleware) NewRateLimiter(ctx *fiber.Ctx) error {
	clientIP := ctx.IP()

	if !m.rateLimitter.allow(clientIP) {
		m.log.WithFields(logrus.Fields{
			"ip":   clientIP,
			"path": ctx.Path(),
		}).Warn("Rate limit exceeded")
		return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": ErrTooManyRequests.Error(),
		})
	}

	return ctx.Next()
}
