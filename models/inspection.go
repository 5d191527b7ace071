package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InspectionStatus string

const (
	InspectionPending   InspectionStatus = "pending"
	InspectionCompleted InspectionStatus = "completed"
	InspectionOverdue   InspectionStatus = "overdue"
	InspectionOnHold    InspectionStatus = "on_hold"
)

// DisplayStatus is the derived compliance class shown against an
// inspection. It is computed from the due date, never stored.
type DisplayStatus string

const (
	DisplayCompliant DisplayStatus = "compliant"
	DisplayDueSoon   DisplayStatus = "due-soon"
	DisplayOverdue   DisplayStatus = "overdue"
)

// DueSoonWindowDays is the inclusive look-ahead window for the due-soon
// class and the widest reminder threshold.
const DueSoonWindowDays = 30

// InspectionType is a named inspection category, e.g. "Annual Load
// Test". FolderURL points at the document folder certificates for this
// type get uploaded to.
type InspectionType struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string    `gorm:"size:150;uniqueIndex;not null" json:"name"`
	FolderURL       string    `gorm:"size:500" json:"folderUrl"`
	FrequencyMonths int       `gorm:"default:12" json:"frequencyMonths"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (t *InspectionType) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

// Inspection ties an asset to an inspection type with a due date and
// the compliance gating fields. LinkedGroupID joins inspections that
// were scheduled together across assets as one logical inspection
// sharing a single checklist.
type Inspection struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	AssetID          uuid.UUID        `gorm:"type:uuid;index;not null" json:"assetId"`
	Asset            *Asset           `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE" json:"asset,omitempty"`
	InspectionTypeID uuid.UUID        `gorm:"type:uuid;index;not null" json:"inspectionTypeId"`
	InspectionType   *InspectionType  `gorm:"foreignKey:InspectionTypeID" json:"inspectionType,omitempty"`
	DueDate          Date             `gorm:"type:date;not null;index" json:"dueDate"`
	CompletedDate    *Date            `gorm:"type:date" json:"completedDate,omitempty"`
	Status           InspectionStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	Assignee         string           `gorm:"size:150" json:"assignee"`
	Notes            string           `gorm:"type:text" json:"notes"`
	LinkedGroupID    *uuid.UUID       `gorm:"type:uuid;index" json:"linkedGroupId,omitempty"`

	// Completion gating fields. Each N/A flag is mutually exclusive
	// with its counterpart value being set.
	NextInspectionDate  *Date  `gorm:"type:date" json:"nextInspectionDate,omitempty"`
	NextInspectionNA    bool   `gorm:"default:false" json:"nextInspectionNa"`
	CertsReceived       bool   `gorm:"default:false" json:"certsReceived"`
	CertsLink           string `gorm:"size:500" json:"certsLink"`
	DefectPortalActions bool   `gorm:"default:false" json:"defectPortalActions"`
	DefectPortalNA      bool   `gorm:"default:false" json:"defectPortalNa"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (i *Inspection) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

// DisplayClass classifies the inspection for compliance badges.
// Completed inspections always read compliant regardless of dates.
// The due-soon window is inclusive on both ends, so an inspection due
// today is due-soon, not overdue.
func (i *Inspection) DisplayClass(today Date) DisplayStatus {
	if i.Status == InspectionCompleted {
		return DisplayCompliant
	}
	if i.DueDate.Before(today) {
		return DisplayOverdue
	}
	if today.DaysUntil(i.DueDate) <= DueSoonWindowDays {
		return DisplayDueSoon
	}
	return DisplayCompliant
}

// DueLabel renders the human countdown string for a pending
// inspection. Any other status suppresses the label.
func (i *Inspection) DueLabel(today Date) string {
	if i.Status != InspectionPending {
		return ""
	}
	diff := today.DaysUntil(i.DueDate)
	switch {
	case diff == 0:
		return "Due today"
	case diff > 0:
		return fmt.Sprintf("%d %s until due", diff, pluralDays(diff))
	default:
		return fmt.Sprintf("%d %s overdue", -diff, pluralDays(-diff))
	}
}

func pluralDays(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}

// CompletionBlockers returns one human-readable reason per failing
// completion clause, in the fixed order next-inspection, certificates,
// defect portal. Empty means the inspection may be completed.
func (i *Inspection) CompletionBlockers() []string {
	var reasons []string
	if !i.NextInspectionNA && (i.NextInspectionDate == nil || i.NextInspectionDate.IsZero()) {
		reasons = append(reasons, "Next inspection date is required (or mark it N/A)")
	}
	if !i.CertsReceived || i.CertsLink == "" {
		reasons = append(reasons, "Certificates must be marked received with a link to the certificate folder")
	}
	if !i.DefectPortalActions && !i.DefectPortalNA {
		reasons = append(reasons, "Defect portal actions must be confirmed (or marked N/A)")
	}
	return reasons
}

// CanComplete reports whether all three gating clauses hold.
func (i *Inspection) CanComplete() bool {
	return len(i.CompletionBlockers()) == 0
}
