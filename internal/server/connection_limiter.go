package server

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// limitReason describes why a connection was rejected.
type limitReason string

const (
	limitReasonGlobal limitReason = "global_limit"
	limitReasonPerIP  limitReason = "per_ip_limit"
	limitReasonRate   limitReason = "rate_limit"
)

// connectionLimits guards the websocket endpoint with three layers: a global
// per-instance cap, a per-IP concurrent cap, and a per-IP token-bucket rate
// limit on new connections.
type connectionLimits struct {
	globalCurrent atomic.Int64
	globalMax     int64

	mu       sync.Mutex
	perIP    map[string]int
	perIPMax int

	limiters       map[string]*rateLimiterEntry
	rate           rate.Limit
	burst          int
	limiterCleanup time.Time
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newConnectionLimits(globalMax int64, perIPMax int, connectionsPerSecond float64, burst int) *connectionLimits {
	return &connectionLimits{
		globalMax:      globalMax,
		perIP:          make(map[string]int),
		perIPMax:       perIPMax,
		limiters:       make(map[string]*rateLimiterEntry),
		rate:           rate.Limit(connectionsPerSecond),
		burst:          burst,
		limiterCleanup: time.Now().Add(5 * time.Minute),
	}
}

// acquire attempts to take all three limits for the given IP. Returns false
// and the reason if any limit is exceeded.
func (l *connectionLimits) acquire(ip string) (bool, limitReason) {
	if !l.allowRate(ip) {
		return false, limitReasonRate
	}

	for {
		current := l.globalCurrent.Load()
		if current >= l.globalMax {
			return false, limitReasonGlobal
		}
		if l.globalCurrent.CompareAndSwap(current, current+1) {
			break
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.perIP[ip] >= l.perIPMax {
		l.globalCurrent.Add(-1)
		return false, limitReasonPerIP
	}
	l.perIP[ip]++
	return true, ""
}

// release frees the slots taken by acquire.
func (l *connectionLimits) release(ip string) {
	l.mu.Lock()
	if count := l.perIP[ip]; count > 0 {
		l.perIP[ip] = count - 1
		if l.perIP[ip] == 0 {
			delete(l.perIP, ip)
		}
	}
	l.mu.Unlock()

	l.globalCurrent.Add(-1)
}

func (l *connectionLimits) allowRate(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Now().After(l.limiterCleanup) {
		cutoff := time.Now().Add(-10 * time.Minute)
		for key, entry := range l.limiters {
			if entry.lastSeen.Before(cutoff) {
				delete(l.limiters, key)
			}
		}
		l.limiterCleanup = time.Now().Add(5 * time.Minute)
	}

	entry, exists := l.limiters[ip]
	if !exists {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}
