package database

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/x86txt/portfolio-sre-agent/internal/triage"
)

// Archive persists incidents as JSON documents. It implements the engine's
// Archiver contract and can hydrate the in-memory store on startup.
// The db parameter is injected to support transaction contexts and testing.
type Archive struct {
	db *gorm.DB
}

// NewArchive creates an incident archive on the given database.
func NewArchive(db *gorm.DB) *Archive {
	return &Archive{db: db}
}

// SaveIncident upserts the archived form of an incident.
func (a *Archive) SaveIncident(incident *triage.Incident) error {
	doc, err := incidentDocument(incident)
	if err != nil {
		return err
	}

	record := &IncidentRecord{
		ID:               incident.ID,
		Service:          incident.Service,
		Env:              incident.Env,
		Status:           string(incident.Status),
		Impact:           string(incident.Impact.Impact),
		Classification:   incident.Impact.Classification,
		ResolutionStatus: string(incident.ResolutionStatus),
		AlertCount:       len(incident.Alerts),
		Document:         doc,
		CreatedAt:        incident.CreatedAt,
		UpdatedAt:        incident.UpdatedAt,
	}
	return a.db.Save(record).Error
}

// GetIncident loads one archived incident, or nil when absent.
func (a *Archive) GetIncident(id string) (*triage.Incident, error) {
	var record IncidentRecord
	err := a.db.Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return recordIncident(&record)
}

// ListRecent returns up to limit archived incidents, most recently updated
// first.
func (a *Archive) ListRecent(limit int) ([]*triage.Incident, error) {
	var records []IncidentRecord
	q := a.db.Order("updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return recordsIncidents(records)
}

// LoadOpen returns all non-resolved archived incidents, used to hydrate the
// in-memory store on startup.
func (a *Archive) LoadOpen() ([]*triage.Incident, error) {
	var records []IncidentRecord
	err := a.db.Where("status <> ?", string(triage.StatusResolved)).
		Order("updated_at ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return recordsIncidents(records)
}

func incidentDocument(incident *triage.Incident) (JSONB, error) {
	data, err := json.Marshal(incident)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize incident %s: %w", incident.ID, err)
	}
	var doc JSONB
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to build incident document %s: %w", incident.ID, err)
	}
	return doc, nil
}

func recordIncident(record *IncidentRecord) (*triage.Incident, error) {
	data, err := json.Marshal(record.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to read incident document %s: %w", record.ID, err)
	}
	var incident triage.Incident
	if err := json.Unmarshal(data, &incident); err != nil {
		return nil, fmt.Errorf("failed to deserialize incident %s: %w", record.ID, err)
	}
	if incident.Signals == nil {
		incident.Signals = make(map[triage.SignalType]*triage.SignalSnapshot)
	}
	return &incident, nil
}

func recordsIncidents(records []IncidentRecord) ([]*triage.Incident, error) {
	out := make([]*triage.Incident, 0, len(records))
	for i := range records {
		incident, err := recordIncident(&records[i])
		if err != nil {
			return nil, err
		}
		out = append(out, incident)
	}
	return out, nil
}
