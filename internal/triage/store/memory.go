// Package store provides the in-memory incident store used by the
// correlation engine. The engine treats the store as an abstraction so a
// durable implementation can back it instead.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/x86txt/portfolio-sre-agent/internal/triage"
)

type serviceEnvKey struct {
	service string
	env     string
}

// MemoryStore keeps incidents, a (service, env) index for fast open-incident
// lookup, and a sliding dedupe cache. All shared state is guarded by one
// store-wide mutex; per-key serialization on top of it is the engine's job.
type MemoryStore struct {
	mu        sync.RWMutex
	incidents map[string]*triage.Incident
	index     map[serviceEnvKey][]string
	dedupe    map[string]time.Time
}

// NewMemoryStore creates an empty in-memory incident store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		incidents: make(map[string]*triage.Incident),
		index:     make(map[serviceEnvKey][]string),
		dedupe:    make(map[string]time.Time),
	}
}

// Upsert inserts or replaces an incident and indexes it by (service, env).
// The store keeps its own snapshot; later mutations of the caller's copy do
// not leak into readers.
func (s *MemoryStore) Upsert(incident *triage.Incident) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.incidents[incident.ID] = incident.Clone()

	key := serviceEnvKey{incident.Service, incident.Env}
	for _, id := range s.index[key] {
		if id == incident.ID {
			return
		}
	}
	s.index[key] = append(s.index[key], incident.ID)
}

// Get returns a copy of the incident with the given id, or nil.
func (s *MemoryStore) Get(id string) *triage.Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inc, ok := s.incidents[id]
	if !ok {
		return nil
	}
	return inc.Clone()
}

// List returns up to limit incident copies ordered by UpdatedAt descending.
func (s *MemoryStore) List(limit int) []*triage.Incident {
	s.mu.RLock()
	items := make([]*triage.Incident, 0, len(s.incidents))
	for _, inc := range s.incidents {
		items = append(items, inc.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// FindOpen returns the most recently updated non-resolved incident for
// (service, env) updated within the window, or nil.
func (s *MemoryStore) FindOpen(service, env string, window time.Duration) *triage.Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().UTC().Add(-window)
	var best *triage.Incident
	for _, id := range s.index[serviceEnvKey{service, env}] {
		inc, ok := s.incidents[id]
		if !ok || inc.Status == triage.StatusResolved || inc.UpdatedAt.Before(cutoff) {
			continue
		}
		if best == nil || inc.UpdatedAt.After(best.UpdatedAt) {
			best = inc
		}
	}
	if best == nil {
		return nil
	}
	return best.Clone()
}

// SeenRecently reports whether the (incident, fingerprint) pair was marked
// seen within the window.
func (s *MemoryStore) SeenRecently(incidentID, fingerprint string, window time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	last, ok := s.dedupe[incidentID+":"+fingerprint]
	if !ok {
		return false
	}
	return time.Since(last) <= window
}

// MarkSeen records the (incident, fingerprint) pair as seen now. Repeated
// marks refresh the timestamp, making the dedupe window sliding.
func (s *MemoryStore) MarkSeen(incidentID, fingerprint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dedupe[incidentID+":"+fingerprint] = time.Now().UTC()
}
