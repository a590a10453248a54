package triage

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config holds the correlation engine tunables.
type Config struct {
	// IncidentWindow is the look-back window when matching an event to an
	// open incident for its (service, env) pair.
	IncidentWindow time.Duration

	// DedupeWindow is the sliding window during which a repeated
	// (incident, fingerprint) pair is dropped without mutating the incident.
	DedupeWindow time.Duration

	// MaxSignalHistory bounds each signal snapshot's observation history.
	MaxSignalHistory int

	// SaturationWarnRatio and GenericWarnRatio set the fraction of the
	// threshold at which a signal enters warning state. Saturation is allowed
	// to run hotter before warning.
	SaturationWarnRatio float64
	GenericWarnRatio    float64
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		IncidentWindow:      60 * time.Minute,
		DedupeWindow:        120 * time.Second,
		MaxSignalHistory:    12,
		SaturationWarnRatio: 0.90,
		GenericWarnRatio:    0.95,
	}
}

// Store is the incident persistence contract the engine depends on.
// All operations are synchronous and in-memory fast; FindOpen must never
// return a resolved incident.
type Store interface {
	// Upsert inserts or replaces an incident.
	Upsert(incident *Incident)

	// Get returns the incident with the given id, or nil.
	Get(id string) *Incident

	// List returns up to limit incidents ordered by UpdatedAt descending.
	List(limit int) []*Incident

	// FindOpen returns the most recently updated non-resolved incident for
	// (service, env) whose UpdatedAt falls within the window, or nil.
	FindOpen(service, env string, window time.Duration) *Incident

	// SeenRecently reports whether (incidentID, fingerprint) was marked seen
	// within the window.
	SeenRecently(incidentID, fingerprint string, window time.Duration) bool

	// MarkSeen records (incidentID, fingerprint) as seen now, refreshing any
	// previous mark.
	MarkSeen(incidentID, fingerprint string)
}

// Archiver receives updated incidents for durable storage. Archiving is
// best-effort and never influences the engine's decisions.
type Archiver interface {
	SaveIncident(incident *Incident) error
}

// keyedMutex hands out one mutex per correlation key so ingestion for
// different (service, env) pairs can proceed independently while the
// read-modify-write per key stays serialized.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) lock(key string) *sync.Mutex {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m
}

// UpdateHook observes every incident mutation the engine commits. It runs
// on the ingesting goroutine after the incident's correlation lock has been
// released, so a hook may block or call back into the engine without
// stalling ingestion for the key.
type UpdateHook func(incident *Incident, previousImpact ImpactLevel)

// Engine correlates normalized alert events into incidents. It is the only
// stateful entry point of the pipeline and is safe for concurrent use.
type Engine struct {
	store   Store
	archive Archiver
	cfg     Config
	keys    *keyedMutex
	onHook  UpdateHook
}

// NewEngine creates a correlation engine on top of the given store.
// archive may be nil to disable durable archiving.
func NewEngine(store Store, archive Archiver, cfg Config) *Engine {
	return &Engine{
		store:   store,
		archive: archive,
		cfg:     cfg,
		keys:    newKeyedMutex(),
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// SetUpdateHook installs the hook invoked after each committed incident
// update. Call before the engine starts receiving events.
func (e *Engine) SetUpdateHook(hook UpdateHook) {
	e.onHook = hook
}

func (e *Engine) fireHook(incident *Incident, previousImpact ImpactLevel) {
	if e.onHook != nil {
		e.onHook(incident, previousImpact)
	}
}

// IngestEvent correlates one event into its owning incident and returns the
// (possibly unchanged) incident. Idempotent with respect to duplicate
// fingerprints inside the dedupe window.
//
// Events without a fingerprint are a programmer error upstream; the engine
// fails fast rather than silently correlating them.
func (e *Engine) IngestEvent(event AlertEvent) *Incident {
	if event.Fingerprint == "" {
		panic(fmt.Sprintf("triage: event %q has no fingerprint", event.ID))
	}

	incident, previousImpact, committed := e.correlate(event)
	if committed {
		e.fireHook(incident, previousImpact)
	}
	return incident
}

// correlate runs the read-modify-write for one event under the key lock and
// reports whether the incident was mutated. The hook fires after the lock is
// released so no subscriber can stall ingestion for the key.
func (e *Engine) correlate(event AlertEvent) (*Incident, ImpactLevel, bool) {
	m := e.keys.lock(event.Service + "|" + event.Env)
	defer m.Unlock()

	incident := e.store.FindOpen(event.Service, event.Env, e.cfg.IncidentWindow)
	if incident != nil && incident.Status == StatusResolved {
		panic(fmt.Sprintf("triage: store returned resolved incident %s from FindOpen", incident.ID))
	}
	if incident == nil {
		incident = NewIncident(uuid.NewString(), event.Service, event.Env)
	}

	// Duplicate report of the same underlying alert: return the incident
	// untouched, no re-classification.
	if e.store.SeenRecently(incident.ID, event.Fingerprint, e.cfg.DedupeWindow) {
		e.store.MarkSeen(incident.ID, event.Fingerprint)
		return incident, incident.Impact.Impact, false
	}
	e.store.MarkSeen(incident.ID, event.Fingerprint)

	incident.Alerts = append(incident.Alerts, event)
	incident.UpdatedAt = time.Now().UTC()

	incident.Signals[event.SignalType] = UpdateSnapshot(incident.Signals[event.SignalType], event, e.cfg)

	previousImpact := incident.Impact.Impact
	impact := AssessIncident(incident)
	incident.Impact = impact
	incident.Status = DeriveStatus(impact, incident, previousImpact)

	e.store.Upsert(incident)
	e.archiveIncident(incident)
	return incident, previousImpact, true
}

// IngestBatch folds a sequence of events through IngestEvent and returns the
// distinct incidents touched, in the order they were first touched.
func (e *Engine) IngestBatch(events []AlertEvent) []*Incident {
	seen := make(map[string]int)
	var touched []*Incident
	for _, ev := range events {
		inc := e.IngestEvent(ev)
		if idx, ok := seen[inc.ID]; ok {
			touched[idx] = inc
			continue
		}
		seen[inc.ID] = len(touched)
		touched = append(touched, inc)
	}
	return touched
}

// Resolve force-sets an incident's resolution from an operator action. Any
// resolution other than "none" also closes the lifecycle; the engine never
// reopens a resolved incident (FindOpen filters them out), so a still-firing
// signal starts a fresh incident instead.
func (e *Engine) Resolve(incidentID string, status ResolutionStatus, note string) *Incident {
	incident := e.applyResolution(incidentID, status, note)
	if incident != nil {
		e.fireHook(incident, incident.Impact.Impact)
	}
	return incident
}

func (e *Engine) applyResolution(incidentID string, status ResolutionStatus, note string) *Incident {
	incident := e.store.Get(incidentID)
	if incident == nil {
		return nil
	}

	m := e.keys.lock(incident.Service + "|" + incident.Env)
	defer m.Unlock()

	// Re-read under the key lock; a concurrent ingest may have updated the
	// incident between the lookup above and acquiring the lock.
	incident = e.store.Get(incidentID)
	if incident == nil {
		return nil
	}

	incident.ResolutionStatus = status
	incident.ResolutionNote = note
	if status != ResolutionNone {
		incident.Status = StatusResolved
	}
	incident.UpdatedAt = time.Now().UTC()

	e.store.Upsert(incident)
	e.archiveIncident(incident)
	return incident
}

func (e *Engine) archiveIncident(incident *Incident) {
	if e.archive == nil {
		return
	}
	if err := e.archive.SaveIncident(incident); err != nil {
		log.Printf("Failed to archive incident %s: %v", incident.ID, err)
	}
}
