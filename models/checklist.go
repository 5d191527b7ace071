package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChecklistStatus string

const (
	ChecklistSent      ChecklistStatus = "sent"
	ChecklistCompleted ChecklistStatus = "completed"
)

type ItemStatus string

const (
	ItemNotChecked   ItemStatus = "not_checked"
	ItemInspected    ItemStatus = "inspected"
	ItemNotAvailable ItemStatus = "not_available"
	ItemDefective    ItemStatus = "defective"
)

// Checklist is the work package an inspection hands to a user. It is
// bound to the inspection's asset/type pair and carries its own due
// date independent of the inspection's. Inspections sharing a
// LinkedGroupID share one checklist.
type Checklist struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InspectionID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"inspectionId"`
	Inspection       *Inspection     `gorm:"foreignKey:InspectionID;constraint:OnDelete:CASCADE" json:"inspection,omitempty"`
	AssetID          uuid.UUID       `gorm:"type:uuid;index;not null" json:"assetId"`
	InspectionTypeID uuid.UUID       `gorm:"type:uuid;not null" json:"inspectionTypeId"`
	AssignedUserID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"assignedUserId"`
	AssignedUser     *User           `gorm:"foreignKey:AssignedUserID" json:"assignedUser,omitempty"`
	Status           ChecklistStatus `gorm:"size:20;not null;default:sent" json:"status"`
	DueDate          Date            `gorm:"type:date;not null" json:"dueDate"`
	CompletedAt      *time.Time      `json:"completedAt,omitempty"`

	Items []ChecklistItem `gorm:"foreignKey:ChecklistID" json:"items,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Checklist) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

type ChecklistItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ChecklistID uuid.UUID  `gorm:"type:uuid;index;not null" json:"checklistId"`
	TemplateID  *uuid.UUID `gorm:"type:uuid" json:"templateId,omitempty"`
	Label       string     `gorm:"size:300;not null" json:"label"`
	Status      ItemStatus `gorm:"size:20;not null;default:not_checked" json:"status"`
	Comment     string     `gorm:"type:text" json:"comment"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ci *ChecklistItem) BeforeCreate(tx *gorm.DB) (err error) {
	if ci.ID == uuid.Nil {
		ci.ID = uuid.New()
	}
	return
}

// IsIssue reports whether the item needs admin attention once the
// checklist completes. This is the single definition used at both
// alert creation and alert resolution.
func (ci *ChecklistItem) IsIssue() bool {
	return ci.Status == ItemDefective || ci.Status == ItemNotAvailable
}

// ItemTemplate is a reusable checklist line scoped to an (asset,
// inspection type) pair. A nil AssetID or InspectionTypeID acts as the
// "all" wildcard. ExpiryDate drives the template's own reminder
// cadence, independent of any inspection.
type ItemTemplate struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UniqueID         string     `gorm:"size:100;index" json:"uniqueId"`
	Description      string     `gorm:"size:300" json:"description"`
	Capacity         string     `gorm:"size:100" json:"capacity"`
	CapacityNA       bool       `gorm:"default:false" json:"capacityNa"`
	ExpiryDate       *Date      `gorm:"type:date" json:"expiryDate,omitempty"`
	ExpiryNA         bool       `gorm:"default:false" json:"expiryNa"`
	AssetID          *uuid.UUID `gorm:"type:uuid;index" json:"assetId,omitempty"`
	InspectionTypeID *uuid.UUID `gorm:"type:uuid;index" json:"inspectionTypeId,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *ItemTemplate) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

// Label synthesizes the checklist line text from the template's unique
// id and description. n is the 1-based position used for the "Item N"
// fallback when both are blank.
func (t *ItemTemplate) Label(n int) string {
	return SynthesizeItemLabel(t.UniqueID, t.Description, n)
}

// SynthesizeItemLabel joins a unique id and description into one
// checklist line label, falling back to "Item N" when both are blank.
func SynthesizeItemLabel(uniqueID, description string, n int) string {
	uniqueID = strings.TrimSpace(uniqueID)
	description = strings.TrimSpace(description)
	switch {
	case uniqueID != "" && description != "":
		return uniqueID + " - " + description
	case uniqueID != "":
		return uniqueID
	case description != "":
		return description
	default:
		return fmt.Sprintf("Item %d", n)
	}
}

// Validation messages shared by the checklist completion endpoints.
const (
	MsgItemsUnchecked = "Please set a status for every checklist item."
	MsgIssueComments  = "Please add comments for all Defective or Not available items."
	MsgAdminsRequired = "Please select at least one admin to notify about the reported issues."
)

// CompletionBlockers validates a full checklist save. Every unmet
// condition is reported at once, never one at a time.
func (c *Checklist) CompletionBlockers(items []ChecklistItem, adminCount int) []string {
	var reasons []string
	unchecked := false
	missingComment := false
	issues := false
	for _, item := range items {
		if item.Status == ItemNotChecked {
			unchecked = true
		}
		if item.IsIssue() {
			issues = true
			if strings.TrimSpace(item.Comment) == "" {
				missingComment = true
			}
		}
	}
	if unchecked {
		reasons = append(reasons, MsgItemsUnchecked)
	}
	if missingComment {
		reasons = append(reasons, MsgIssueComments)
	}
	if issues && adminCount == 0 {
		reasons = append(reasons, MsgAdminsRequired)
	}
	return reasons
}

// IssueItems filters the items needing an admin alert.
func IssueItems(items []ChecklistItem) []ChecklistItem {
	var out []ChecklistItem
	for _, item := range items {
		if item.IsIssue() {
			out = append(out, item)
		}
	}
	return out
}
