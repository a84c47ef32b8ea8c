package session

import (
	"sync"
	"time"
)

// rateLimiter is a token bucket guarding one session against a runaway
// request rate, refilling `rate` tokens every second.
type rateLimiter struct {
	mu       sync.Mutex
	tokens   int
	rate     int
	lastSeen time.Time
	now      func() time.Time
}

func newRateLimiter(rate, burst int) *rateLimiter {
	return &rateLimiter{
		tokens:   burst,
		rate:     rate,
		lastSeen: time.Now(),
		now:      time.Now,
	}
}

func (rl *rateLimiter) allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(rl.lastSeen)
	if refill := int(elapsed.Seconds()) * rl.rate; refill > 0 {
		rl.tokens += refill
		if rl.tokens > rl.rate {
			rl.tokens = rl.rate
		}
		rl.lastSeen = now
	}

	if rl.tokens <= 0 {
		return false
	}
	rl.tokens--
	return true
}
