package limiter

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process limiter with sliding window and lockout, keyed by
// (username, ip hash). State does not survive a restart, which is acceptable
// for a single-node server: a restart only resets in-flight lockouts.
type Memory struct {
	window   time.Duration
	maxFails int
	blockFor time.Duration
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	fails        int
	windowStart  time.Time
	blockedUntil time.Time
}

// NewMemory constructs an in-memory limiter.
func NewMemory(window time.Duration, maxFails int, blockFor time.Duration) *Memory {
	return &Memory{
		window:   window,
		maxFails: maxFails,
		blockFor: blockFor,
		now:      time.Now,
		entries:  make(map[string]*entry),
	}
}

func key(username string, ipHash []byte) string {
	return username + "\x00" + string(ipHash)
}

// Allow reports whether login is currently allowed and a retry-after duration.
func (l *Memory) Allow(ctx context.Context, username string, ipHash []byte) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key(username, ipHash)]
	if !ok {
		return true, 0, nil
	}
	now := l.now()
	if e.blockedUntil.After(now) {
		return false, e.blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

// Success resets counters for the (username, ip) pair.
func (l *Memory) Success(ctx context.Context, username string, ipHash []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key(username, ipHash))
	return nil
}

// Failure records a failed attempt and reports whether the pair is now blocked.
func (l *Memory) Failure(ctx context.Context, username string, ipHash []byte) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	k := key(username, ipHash)
	e, ok := l.entries[k]
	if !ok || now.Sub(e.windowStart) > l.window {
		e = &entry{windowStart: now}
		l.entries[k] = e
	}
	e.fails++
	if e.fails >= l.maxFails {
		e.blockedUntil = now.Add(l.blockFor)
		e.fails = 0
		e.windowStart = now
		return true, l.blockFor, nil
	}
	return false, 0, nil
}
