package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderKind string

const (
	ReminderInspection   ReminderKind = "inspection"
	ReminderTemplateItem ReminderKind = "template_item"
)

// ReminderThresholds are the fixed days-before-due notification
// thresholds, widest first.
var ReminderThresholds = []int{30, 14, 7, 1}

// Reminder is one row per (entity, threshold). Sent is a one-way latch
// guaranteeing at most one email per threshold, no matter how often the
// sweep runs.
type Reminder struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Kind          ReminderKind `gorm:"size:20;not null;uniqueIndex:idx_reminder_entity_threshold" json:"kind"`
	EntityID      uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reminder_entity_threshold" json:"entityId"`
	ThresholdDays int          `gorm:"not null;uniqueIndex:idx_reminder_entity_threshold" json:"thresholdDays"`
	Sent          bool         `gorm:"default:false" json:"sent"`
	SentAt        *time.Time   `json:"sentAt,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (r *Reminder) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

// ThresholdsEntered returns the thresholds whose windows a due date has
// entered, i.e. daysUntil <= threshold. Entities already past due still
// sit inside every window.
func ThresholdsEntered(daysUntil int) []int {
	var entered []int
	for _, t := range ReminderThresholds {
		if daysUntil <= t {
			entered = append(entered, t)
		}
	}
	return entered
}

// ShouldSendReminder reports whether the threshold email goes out now:
// only on the first day of the window, and only while unsent. Later
// days inside the window create no traffic; the row just sits latched
// or unsent.
func ShouldSendReminder(daysUntil, threshold int, sent bool) bool {
	return daysUntil == threshold && !sent
}

// ReportRecipient receives the weekly digest while active.
type ReportRecipient struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email  string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Active bool      `gorm:"default:true" json:"active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (r *ReportRecipient) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
