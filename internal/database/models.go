package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSONB is a custom type for JSON document columns (JSONB on PostgreSQL,
// TEXT on SQLite).
type JSONB map[string]interface{}

// Scan implements the sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, j)
}

// Value implements the driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// IncidentRecord is the archived form of a correlated incident. The full
// incident document lives in the Document column; the indexed columns exist
// for querying only and are derived from the document on save.
type IncidentRecord struct {
	ID               string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Service          string    `gorm:"type:varchar(255);not null;index:idx_service_env" json:"service"`
	Env              string    `gorm:"type:varchar(64);not null;index:idx_service_env" json:"env"`
	Status           string    `gorm:"type:varchar(32);not null;index" json:"status"`
	Impact           string    `gorm:"type:varchar(16)" json:"impact"`
	Classification   string    `gorm:"type:varchar(64)" json:"classification"`
	ResolutionStatus string    `gorm:"type:varchar(32)" json:"resolution_status"`
	AlertCount       int       `json:"alert_count"`
	Document         JSONB     `gorm:"type:jsonb" json:"document"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `gorm:"index" json:"updated_at"`
}

func (IncidentRecord) TableName() string {
	return "incidents"
}
