// Package ratelimit provides per-IP request limiting for the HTTP API.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiter configuration
type Config struct {
	IPLimitPerMin   int // per-IP requests per minute
	BurstMultiplier int // burst capacity multiplier
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() Config {
	return Config{
		IPLimitPerMin:   60,
		BurstMultiplier: 2,
	}
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter tracks one token bucket per client IP and evicts idle entries.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	config  Config
}

// NewLimiter creates a limiter and starts the idle-entry sweeper.
func NewLimiter(config Config) *Limiter {
	if config.IPLimitPerMin <= 0 {
		config.IPLimitPerMin = DefaultConfig().IPLimitPerMin
	}
	if config.BurstMultiplier <= 0 {
		config.BurstMultiplier = DefaultConfig().BurstMultiplier
	}
	l := &Limiter{
		entries: make(map[string]*entry),
		config:  config,
	}
	go l.sweep()
	return l
}

// Allow reports whether a request from ip may proceed.
func (l *Limiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[ip]
	if !ok {
		limit := rate.Limit(float64(l.config.IPLimitPerMin) / 60.0)
		e = &entry{limiter: rate.NewLimiter(limit, l.config.IPLimitPerMin*l.config.BurstMultiplier/60+1)}
		l.entries[ip] = e
	}
	e.lastSeen = time.Now()
	return e.limiter.Allow()
}

// sweep evicts entries idle for more than ten minutes.
func (l *Limiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)
		l.mu.Lock()
		for ip, e := range l.entries {
			if e.lastSeen.Before(cutoff) {
				delete(l.entries, ip)
			}
		}
		l.mu.Unlock()
	}
}

// Size returns the number of tracked IPs.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
