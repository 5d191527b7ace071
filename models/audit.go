package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions referenced elsewhere in the codebase. Free-form actions
// are allowed; these are the ones queried back.
const (
	AuditChecklistCreated = "checklist_created"
	AuditAlertResolved    = "alert_resolved"
	AuditOnHold           = "on_hold"
	AuditCompleted        = "completed"
)

// AuditLog is an append-only trail of domain actions. The weekly digest
// resolves the latest on_hold entry per inspection back to its author.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EntityType string         `gorm:"size:50;not null;index:idx_audit_entity" json:"entityType"`
	EntityID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_audit_entity" json:"entityId"`
	Action     string         `gorm:"size:50;not null;index" json:"action"`
	ActorID    uuid.UUID      `gorm:"type:uuid;not null" json:"actorId"`
	Summary    string         `gorm:"type:text" json:"summary"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
