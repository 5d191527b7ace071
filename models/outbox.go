package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EmailKind string

const (
	EmailChecklistAssignment EmailKind = "checklist_assignment"
	EmailChecklistIssueAlert EmailKind = "checklist_issue_alert"
	EmailUserRequest         EmailKind = "user_request"
	EmailInspectionReminder  EmailKind = "inspection_reminder"
	EmailTemplateReminder    EmailKind = "template_reminder"
	EmailManualAlert         EmailKind = "manual_alert"
	EmailWeeklyDigest        EmailKind = "weekly_digest"
)

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxSent    OutboxStatus = "sent"
	OutboxFailed  OutboxStatus = "failed"
)

// MaxDeliveryAttempts bounds outbox retries before a row is parked as
// failed for manual requeue.
const MaxDeliveryAttempts = 5

// EmailOutbox is a durable record of a notification intent. The row is
// written in the same transaction as the primary domain write, so a
// failed SMTP delivery never loses the intent and a failed domain write
// never sends mail. The outbox worker delivers pending rows with
// bounded retry.
type EmailOutbox struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Kind       EmailKind      `gorm:"size:40;not null;index" json:"kind"`
	Recipients pq.StringArray `gorm:"type:text[];not null" json:"recipients"`
	Subject    string         `gorm:"size:300;not null" json:"subject"`
	Body       string         `gorm:"type:text;not null" json:"body"`
	HTML       bool           `gorm:"default:false" json:"html"`
	Payload    datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`
	Status     OutboxStatus   `gorm:"size:20;not null;default:pending;index" json:"status"`
	Attempts   int            `gorm:"default:0" json:"attempts"`
	LastError  string         `gorm:"type:text" json:"lastError,omitempty"`
	SentAt     *time.Time     `json:"sentAt,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (e *EmailOutbox) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}

// MarkSent latches the row as delivered.
func (e *EmailOutbox) MarkSent() {
	now := time.Now()
	e.Status = OutboxSent
	e.SentAt = &now
}

// MarkAttemptFailed records a delivery failure, parking the row once
// the retry budget is spent.
func (e *EmailOutbox) MarkAttemptFailed(errMsg string) {
	e.Attempts++
	e.LastError = errMsg
	if e.Attempts >= MaxDeliveryAttempts {
		e.Status = OutboxFailed
	}
}
