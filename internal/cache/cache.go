// Package cache provides the TTL response cache for generated situation
// reports. Reports are cached until their incident changes.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long a cached report stays valid when its incident does
// not change.
const DefaultTTL = time.Hour

// entry is a cached report with expiration
type entry struct {
	content   string
	expiresAt time.Time
}

// ReportCache is a thread-safe TTL cache with background cleanup, keyed by
// (incident, model, format).
type ReportCache struct {
	mu          sync.RWMutex
	entries     map[string]entry
	ttl         time.Duration
	cleanupTick time.Duration
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// New creates a report cache with the given TTL and cleanup interval.
func New(ttl, cleanupInterval time.Duration) *ReportCache {
	c := &ReportCache{
		entries:     make(map[string]entry),
		ttl:         ttl,
		cleanupTick: cleanupInterval,
		stopCleanup: make(chan struct{}),
	}

	go c.cleanupLoop()

	return c
}

// Key builds the cache key for a report. model is "none" for deterministic
// reports.
func Key(incidentID, model, format string) string {
	if model == "" {
		model = "none"
	}
	return fmt.Sprintf("report:%s:%s:%s", incidentID, model, format)
}

// Get retrieves a cached report. Returns false if absent or expired.
func (c *ReportCache) Get(incidentID, model, format string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[Key(incidentID, model, format)]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		// Expired entries are left for the cleanup loop to avoid a lock
		// upgrade here.
		return "", false
	}
	return e.content, true
}

// Set caches a rendered report.
func (c *ReportCache) Set(incidentID, model, format, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[Key(incidentID, model, format)] = entry{
		content:   content,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// InvalidateIncident drops every cached report for an incident.
func (c *ReportCache) InvalidateIncident(incidentID string) {
	prefix := "report:" + incidentID + ":"

	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of entries, including not-yet-collected expired ones.
func (c *ReportCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stop terminates the background cleanup goroutine.
func (c *ReportCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCleanup)
	})
}

func (c *ReportCache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupTick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *ReportCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
