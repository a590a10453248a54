// Package ratelimit guards the LLM report endpoint with per-client token
// bucket limiters.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a single token bucket. Tokens refill continuously at a fixed
// rate up to the burst capacity.
type Limiter struct {
	mu       sync.Mutex
	tokens   float64
	burst    float64
	rate     float64 // tokens per second
	lastFill time.Time
}

// New creates a bucket that refills at ratePerSecond and holds at most
// burstCapacity tokens. The bucket starts full.
func New(ratePerSecond float64, burstCapacity int) *Limiter {
	return &Limiter{
		tokens:   float64(burstCapacity),
		burst:    float64(burstCapacity),
		rate:     ratePerSecond,
		lastFill: time.Now(),
	}
}

// Allow consumes a token if one is available and reports whether it did.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.fill()
	if l.tokens < 1 {
		return false
	}
	l.tokens--
	return true
}

// Tokens returns the approximate number of tokens currently available.
func (l *Limiter) Tokens() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.fill()
	return l.tokens
}

// fill credits tokens for the time elapsed since the last fill. Callers must
// hold the mutex.
func (l *Limiter) fill() {
	now := time.Now()
	l.tokens += now.Sub(l.lastFill).Seconds() * l.rate
	if l.tokens > l.burst {
		l.tokens = l.burst
	}
	l.lastFill = now
}
