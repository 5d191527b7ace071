package handlers

import (
	"log"
	"time"

	"gorm.io/gorm"
	"p9e.in/inspectra/config"
	"p9e.in/inspectra/models"
)

// OutboxWorker drains the email outbox. Rows are written by the domain
// handlers inside their own transactions; this worker owns delivery
// and retry, so a dead SMTP server never blocks or rolls back a
// checklist save.
type OutboxWorker struct {
	db     *gorm.DB
	mailer *Mailer
}

func NewOutboxWorker() *OutboxWorker {
	return &OutboxWorker{
		db:     config.DB,
		mailer: NewMailer(),
	}
}

// Start runs the delivery loop until the process exits.
func (ow *OutboxWorker) Start() {
	log.Println("📮 Starting Email Outbox Worker...")

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ow.DeliverPending()
	}
}

// DeliverPending attempts every pending row once, oldest first.
func (ow *OutboxWorker) DeliverPending() {
	var rows []models.EmailOutbox
	if err := ow.db.Where("status = ?", models.OutboxPending).
		Order("created_at ASC").
		Limit(50).
		Find(&rows).Error; err != nil {
		log.Printf("⚠️  Failed to fetch outbox rows: %v", err)
		return
	}

	for i := range rows {
		row := &rows[i]
		if err := ow.mailer.Send(row.Recipients, row.Subject, row.Body, row.HTML); err != nil {
			row.MarkAttemptFailed(err.Error())
			log.Printf("❌ Outbox delivery failed (%s, attempt %d): %v", row.Kind, row.Attempts, err)
		} else {
			row.MarkSent()
			log.Printf("✅ Delivered %s email to %d recipient(s)", row.Kind, len(row.Recipients))
		}
		if err := ow.db.Save(row).Error; err != nil {
			log.Printf("⚠️  Failed to persist outbox row %s: %v", row.ID, err)
		}
	}
}

// RequeueFailed resets failed rows for another round of attempts.
// Exposed through the admin jobs endpoint.
func (ow *OutboxWorker) RequeueFailed() (int64, error) {
	res := ow.db.Model(&models.EmailOutbox{}).
		Where("status = ?", models.OutboxFailed).
		Updates(map[string]interface{}{"status": models.OutboxPending, "attempts": 0, "last_error": ""})
	return res.RowsAffected, res.Error
}

// enqueueEmail writes one outbox row on the given transaction so the
// notification intent commits (or rolls back) with the primary write.
func enqueueEmail(tx *gorm.DB, kind models.EmailKind, recipients []string, subject, body string, html bool) error {
	if len(recipients) == 0 {
		return nil
	}
	row := models.EmailOutbox{
		Kind:       kind,
		Recipients: recipients,
		Subject:    subject,
		Body:       body,
		HTML:       html,
		Status:     models.OutboxPending,
	}
	return tx.Create(&row).Error
}
