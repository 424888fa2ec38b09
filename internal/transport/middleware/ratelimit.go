package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/heartmarshall/matterdesk-backend/pkg/ctxutil"
)

// idleEviction is how long a caller's limiter survives without requests.
const idleEviction = 10 * time.Minute

// RateLimiter hands out per-caller token buckets. Callers are keyed by user
// id, or by client IP when the request is anonymous.
type RateLimiter struct {
	mu     sync.Mutex
	groups []*limiterGroup
	stop   chan struct{}
	once   sync.Once
}

// limiterGroup holds the buckets of one Limit middleware.
type limiterGroup struct {
	mu      sync.Mutex
	perMin  int
	callers map[string]*caller
}

type caller struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewRateLimiter starts a sweeper that drops idle callers every
// cleanupInterval. Call Stop on shutdown.
func NewRateLimiter(cleanupInterval time.Duration) *RateLimiter {
	rl := &RateLimiter{stop: make(chan struct{})}
	go rl.sweep(cleanupInterval)
	return rl
}

// Stop ends the sweeper. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Limit allows each caller perMinute requests per minute, with bursts up to
// the same amount. Rejected requests get 429 and a Retry-After in seconds.
// It must run inside Auth to key by user.
func (rl *RateLimiter) Limit(perMinute int) Middleware {
	g := &limiterGroup{perMin: max(perMinute, 1), callers: make(map[string]*caller)}
	rl.mu.Lock()
	rl.groups = append(rl.groups, g)
	rl.mu.Unlock()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			res := g.limiter(limitKey(r), now).ReserveN(now, 1)
			if wait := res.DelayFrom(now); wait > 0 {
				res.CancelAt(now)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *limiterGroup) limiter(key string, now time.Time) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.callers[key]
	if !ok {
		every := rate.Every(time.Minute / time.Duration(g.perMin))
		c = &caller{lim: rate.NewLimiter(every, g.perMin)}
		g.callers[key] = c
	}
	c.seen = now
	return c.lim
}

func (g *limiterGroup) evict(before time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key, c := range g.callers {
		if c.seen.Before(before) {
			delete(g.callers, key)
		}
	}
}

func limitKey(r *http.Request) string {
	if id, ok := ctxutil.UserIDFromCtx(r.Context()); ok {
		return "user:" + id.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func (rl *RateLimiter) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			groups := append([]*limiterGroup(nil), rl.groups...)
			rl.mu.Unlock()
			for _, g := range groups {
				g.evict(now.Add(-idleEviction))
			}
		}
	}
}
