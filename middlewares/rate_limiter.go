package middlewares

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queue-app/utils"
	"golang.org/x/time/rate"
)

var errTooManyRequests = errors.New("Too many requests, please wait a moment")

// sweepEvery is how often idle client entries are purged.
const sweepEvery = time.Minute

// RateLimiter is a sliding-window limit of requests per IP.
type RateLimiter struct {
	rate      int
	interval  time.Duration
	ips       map[string][]time.Time
	mu        sync.Mutex
	now       func() time.Time
	lastSweep time.Time
}

func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		rate:     limit,
		interval: interval,
		ips:      make(map[string][]time.Time),
		now:      time.Now,
	}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			utils.RespondError(c, http.StatusTooManyRequests, errTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.interval)
	if now.Sub(rl.lastSweep) >= sweepEvery {
		rl.sweep(cutoff)
		rl.lastSweep = now
	}

	valid := rl.ips[ip][:0]
	for _, t := range rl.ips[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.rate {
		rl.ips[ip] = valid
		return false
	}
	rl.ips[ip] = append(valid, now)
	return true
}

// sweep drops IPs with no request inside the window. Caller holds rl.mu.
func (rl *RateLimiter) sweep(cutoff time.Time) {
	for ip, hits := range rl.ips {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(rl.ips, ip)
		}
	}
}

type joinVisitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// JoinRateLimiter holds one token bucket per client IP for the join endpoint.
type JoinRateLimiter struct {
	limit     rate.Limit
	burst     int
	idle      time.Duration
	visitors  map[string]*joinVisitor
	mu        sync.Mutex
	now       func() time.Time
	lastSweep time.Time
}

func NewJoinRateLimiter(perMinute int) *JoinRateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &JoinRateLimiter{
		limit: rate.Every(time.Minute / time.Duration(perMinute)),
		burst: perMinute,
		// a bucket idle this long has refilled completely
		idle:     time.Minute,
		visitors: make(map[string]*joinVisitor),
		now:      time.Now,
	}
}

func (jl *JoinRateLimiter) allow(ip string) bool {
	jl.mu.Lock()
	defer jl.mu.Unlock()

	now := jl.now()
	if now.Sub(jl.lastSweep) >= sweepEvery {
		for key, v := range jl.visitors {
			if now.Sub(v.lastSeen) >= jl.idle {
				delete(jl.visitors, key)
			}
		}
		jl.lastSweep = now
	}

	v, ok := jl.visitors[ip]
	if !ok {
		v = &joinVisitor{limiter: rate.NewLimiter(jl.limit, jl.burst)}
		jl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (jl *JoinRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !jl.allow(c.ClientIP()) {
			utils.RespondError(c, http.StatusTooManyRequests, errTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
