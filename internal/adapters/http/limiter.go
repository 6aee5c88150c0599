package http

import (
	"sync"
	"time"
)

// JoinLimiter bounds join attempts per client in a sliding window.
type JoinLimiter struct {
	mu        sync.Mutex
	history   map[string][]time.Time
	lastSweep time.Time
	limit     int
	interval  time.Duration
	now       func() time.Time
}

func NewJoinLimiter(limit int, interval time.Duration) *JoinLimiter {
	return &JoinLimiter{
		history:  make(map[string][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

// Allow records an attempt for client and reports whether it fits the
// window. A non-positive limit disables limiting.
func (rl *JoinLimiter) Allow(client string) bool {
	if rl.limit <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.interval)
	if now.Sub(rl.lastSweep) >= rl.interval {
		rl.sweep(windowStart)
		rl.lastSweep = now
	}

	attempts := rl.history[client]
	fresh := attempts[:0]
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[client] = fresh
		return false
	}
	rl.history[client] = append(fresh, now)
	return true
}

// sweep forgets clients with no attempt inside the window.
func (rl *JoinLimiter) sweep(windowStart time.Time) {
	for client, attempts := range rl.history {
		if len(attempts) == 0 || !attempts[len(attempts)-1].After(windowStart) {
			delete(rl.history, client)
		}
	}
}
