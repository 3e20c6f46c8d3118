package auth

import (
	"sync"
	"time"
)

type attempt struct {
	count int
	first time.Time
}

// LoginThrottle blocks an IP after repeated failed logins. It is a fixed
// window: the first failure opens the window, maxAttempts failures inside it
// block the IP until the window closes.
type LoginThrottle struct {
	mu          sync.Mutex
	attempts    map[string]*attempt
	maxAttempts int
	window      time.Duration

	now func() time.Time
}

// NewLoginThrottle creates a throttle allowing maxAttempts failures per window.
func NewLoginThrottle(maxAttempts int, window time.Duration) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginThrottle{
		attempts:    make(map[string]*attempt),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// SetClock overrides the time source. Test seam.
func (t *LoginThrottle) SetClock(now func() time.Time) {
	t.now = now
}

// Allow reports whether the IP may attempt a login, and when blocked, how long
// until the block lifts.
func (t *LoginThrottle) Allow(ip string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.attempts[ip]
	if !ok {
		return true, 0
	}

	elapsed := t.now().Sub(a.first)
	if elapsed > t.window {
		delete(t.attempts, ip)
		return true, 0
	}
	if a.count >= t.maxAttempts {
		return false, t.window - elapsed
	}
	return true, 0
}

// RecordFailure counts one failed login for the IP.
func (t *LoginThrottle) RecordFailure(ip string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	a, ok := t.attempts[ip]
	if !ok || now.Sub(a.first) > t.window {
		t.attempts[ip] = &attempt{count: 1, first: now}
		return
	}
	a.count++
}

// Clear forgets the IP after a successful login.
func (t *LoginThrottle) Clear(ip string) {
	t.mu.Lock()
	delete(t.attempts, ip)
	t.mu.Unlock()
}

// Sweep drops windows that have fully elapsed. Called periodically from main.
func (t *LoginThrottle) Sweep() {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	for ip, a := range t.attempts {
		if now.Sub(a.first) > t.window {
			delete(t.attempts, ip)
		}
	}
}
