// Package admission decides whether a caller may start another generation.
package admission

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Defaults match the public endpoint: 10 requests per 15 minutes per client.
const (
	DefaultRequests = 10
	DefaultWindow   = 15 * time.Minute
)

// Controller accepts or rejects a request for a caller identity.
type Controller interface {
	Allow(key string) bool
}

// AllowAll admits every request.
type AllowAll struct{}

func (AllowAll) Allow(string) bool { return true }

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter is a per-key token bucket. Each key may burst up to requests calls
// and regains one call every window/requests. Keys idle for a full window are
// evicted.
type Limiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	window    time.Duration
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

// NewLimiter allows requests calls per window for each key.
func NewLimiter(requests int, window time.Duration) *Limiter {
	if requests <= 0 {
		requests = DefaultRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		window:   window,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Allow reports whether key may make a request now, consuming one token if so.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// sweep drops idle keys at most once per window. Caller holds l.mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) >= l.window {
			delete(l.visitors, key)
		}
	}
}
