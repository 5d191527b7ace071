package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChecklistAlert flags a completed checklist with issue items to one
// admin. At most one unresolved alert may exist per (checklist, admin)
// pair; the fanout dedupes against that before inserting.
type ChecklistAlert struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ChecklistID uuid.UUID  `gorm:"type:uuid;index;not null" json:"checklistId"`
	Checklist   *Checklist `gorm:"foreignKey:ChecklistID;constraint:OnDelete:CASCADE" json:"checklist,omitempty"`
	AdminID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"adminId"`
	Admin       *User      `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	RaisedByID  uuid.UUID  `gorm:"type:uuid;not null" json:"raisedById"`
	Message     string     `gorm:"type:text" json:"message"`
	Resolved    bool       `gorm:"default:false;index" json:"resolved"`
	ResolvedBy  *uuid.UUID `gorm:"type:uuid" json:"resolvedBy,omitempty"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`

	Resolutions []AlertResolution `gorm:"foreignKey:AlertID" json:"resolutions,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (a *ChecklistAlert) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// AlertResolution records the admin's resolution text for one flagged
// item, one row per (alert, item) pair.
type AlertResolution struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AlertID         uuid.UUID `gorm:"type:uuid;index;not null" json:"alertId"`
	ChecklistItemID uuid.UUID `gorm:"type:uuid;not null" json:"checklistItemId"`
	Resolution      string    `gorm:"type:text;not null" json:"resolution"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (r *AlertResolution) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

// UserRequest is a free-text message from a non-admin to a specific
// admin, e.g. asking for a new item template.
type UserRequest struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AdminID  uuid.UUID `gorm:"type:uuid;index;not null" json:"adminId"`
	Admin    *User     `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	Message  string    `gorm:"type:text;not null" json:"message"`
	Resolved bool      `gorm:"default:false;index" json:"resolved"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (r *UserRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
