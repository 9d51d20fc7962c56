package handlers

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// rateLimiter throttles failed login attempts per client IP. It is
// only constructed when enable_rate_limit is set.
type rateLimiter struct {
	sync.Mutex
	attempts map[string]*attemptData
	blocked  map[string]time.Time
}

type attemptData struct {
	count        int
	firstAttempt time.Time
}

const (
	maxAttempts    = 5
	blockDuration  = 15 * time.Minute
	windowDuration = 15 * time.Minute
)

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		attempts: make(map[string]*attemptData),
		blocked:  make(map[string]time.Time),
	}
}

// Allow returns false while the IP is blocked. Expired blocks are
// cleaned up on the way through.
func (l *rateLimiter) Allow(ip string) bool {
	l.Lock()
	defer l.Unlock()

	if unblockTime, ok := l.blocked[ip]; ok {
		if time.Now().Before(unblockTime) {
			return false
		}
		delete(l.blocked, ip)
		delete(l.attempts, ip)
	}
	return true
}

// RecordFailure counts a failed login and blocks the IP once the
// threshold is reached inside the window.
func (l *rateLimiter) RecordFailure(ip string) {
	l.Lock()
	defer l.Unlock()

	// Cap the map so a spray of spoofed addresses cannot grow it
	// without bound. A full reset opens a short bypass window but
	// keeps memory flat.
	if len(l.attempts) > 10000 {
		l.attempts = make(map[string]*attemptData)
	}

	data, exists := l.attempts[ip]
	if !exists || time.Since(data.firstAttempt) > windowDuration {
		l.attempts[ip] = &attemptData{count: 1, firstAttempt: time.Now()}
		return
	}
	data.count++
	if data.count >= maxAttempts {
		l.blocked[ip] = time.Now().Add(blockDuration)
	}
}

// Reset clears the counters for an IP after a successful login.
func (l *rateLimiter) Reset(ip string) {
	l.Lock()
	defer l.Unlock()
	delete(l.attempts, ip)
	delete(l.blocked, ip)
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
