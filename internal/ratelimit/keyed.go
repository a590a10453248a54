package ratelimit

import "sync"

// KeyedLimiter maintains one token bucket per client key (typically the
// client IP). Buckets are created lazily on first use.
type KeyedLimiter struct {
	mu            sync.Mutex
	limiters      map[string]*Limiter
	ratePerSecond float64
	burst         int
}

// NewKeyed creates a keyed limiter. Each key gets its own bucket with the
// given refill rate and burst capacity.
func NewKeyed(ratePerSecond float64, burst int) *KeyedLimiter {
	return &KeyedLimiter{
		limiters:      make(map[string]*Limiter),
		ratePerSecond: ratePerSecond,
		burst:         burst,
	}
}

// NewPerHour creates a keyed limiter allowing n requests per hour per key.
func NewPerHour(n int) *KeyedLimiter {
	return NewKeyed(float64(n)/3600.0, n)
}

// Allow reports whether the client identified by key may proceed, consuming
// a token when it can.
func (k *KeyedLimiter) Allow(key string) bool {
	return k.limiter(key).Allow()
}

// Remaining returns the approximate number of requests the key has left.
func (k *KeyedLimiter) Remaining(key string) int {
	return int(k.limiter(key).Tokens())
}

// Reset removes the bucket for a key, restoring its full burst on next use.
func (k *KeyedLimiter) Reset(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.limiters, key)
}

func (k *KeyedLimiter) limiter(key string) *Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.limiters[key]
	if !ok {
		l = New(k.ratePerSecond, k.burst)
		k.limiters[key] = l
	}
	return l
}
