package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"p9e.in/inspectra/config"
	"p9e.in/inspectra/models"
)

// ReminderService owns the due-date reminder ledger and the overdue
// sweep. Sweeps are idempotent: the unique (entity, threshold) row plus
// the one-way sent latch guarantee at most one email per threshold no
// matter how often they run.
type ReminderService struct {
	db *gorm.DB
}

func NewReminderService() *ReminderService {
	return &ReminderService{
		db: config.DB,
	}
}

// StartScheduler runs the sweeps hourly. Re-running within the same
// day is harmless.
func (rs *ReminderService) StartScheduler() {
	log.Println("📅 Starting Reminder Scheduler...")

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		rs.RunSweeps()
	}
}

// RunSweeps executes the three daily passes.
func (rs *ReminderService) RunSweeps() {
	today := models.Today()
	if err := rs.SweepOverdue(today); err != nil {
		log.Printf("❌ Overdue sweep failed: %v", err)
	}
	if err := rs.SweepInspectionReminders(today); err != nil {
		log.Printf("❌ Inspection reminder sweep failed: %v", err)
	}
	if err := rs.SweepTemplateReminders(today); err != nil {
		log.Printf("❌ Template reminder sweep failed: %v", err)
	}
}

// SweepOverdue flips pending inspections past their due date to
// overdue. Decoupled from the reminder passes on purpose.
func (rs *ReminderService) SweepOverdue(today models.Date) error {
	res := rs.db.Model(&models.Inspection{}).
		Where("status = ? AND due_date < ?", models.InspectionPending, today.Time()).
		Update("status", models.InspectionOverdue)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("🔍 Marked %d inspection(s) overdue", res.RowsAffected)
	}
	return nil
}

// SweepInspectionReminders walks every pending inspection and settles
// its reminder ledger against today.
func (rs *ReminderService) SweepInspectionReminders(today models.Date) error {
	var inspections []models.Inspection
	if err := rs.db.Preload("Asset").Preload("InspectionType").
		Where("status = ?", models.InspectionPending).
		Find(&inspections).Error; err != nil {
		return err
	}

	for i := range inspections {
		insp := &inspections[i]
		daysUntil := today.DaysUntil(insp.DueDate)
		for _, threshold := range models.ThresholdsEntered(daysUntil) {
			if err := rs.settleReminder(models.ReminderInspection, insp.ID, threshold, daysUntil, func(tx *gorm.DB) error {
				return rs.enqueueInspectionReminder(tx, insp, daysUntil)
			}); err != nil {
				log.Printf("⚠️  Reminder for inspection %s at T-%d failed: %v", insp.ID, threshold, err)
			}
		}
	}
	return nil
}

// SweepTemplateReminders does the same for item templates with their
// own expiry dates.
func (rs *ReminderService) SweepTemplateReminders(today models.Date) error {
	var templates []models.ItemTemplate
	if err := rs.db.
		Where("expiry_date IS NOT NULL AND expiry_na = false").
		Find(&templates).Error; err != nil {
		return err
	}

	for i := range templates {
		tpl := &templates[i]
		daysUntil := today.DaysUntil(*tpl.ExpiryDate)
		for _, threshold := range models.ThresholdsEntered(daysUntil) {
			if err := rs.settleReminder(models.ReminderTemplateItem, tpl.ID, threshold, daysUntil, func(tx *gorm.DB) error {
				return rs.enqueueTemplateReminder(tx, tpl, daysUntil)
			}); err != nil {
				log.Printf("⚠️  Reminder for template %s at T-%d failed: %v", tpl.ID, threshold, err)
			}
		}
	}
	return nil
}

// settleReminder find-or-creates the (entity, threshold) row, and on
// the first day of the window enqueues the email and latches sent,
// both in one transaction.
func (rs *ReminderService) settleReminder(kind models.ReminderKind, entityID uuid.UUID, threshold, daysUntil int, enqueue func(tx *gorm.DB) error) error {
	return rs.db.Transaction(func(tx *gorm.DB) error {
		var reminder models.Reminder
		err := tx.Where("kind = ? AND entity_id = ? AND threshold_days = ?", kind, entityID, threshold).
			First(&reminder).Error
		if err == gorm.ErrRecordNotFound {
			reminder = models.Reminder{
				Kind:          kind,
				EntityID:      entityID,
				ThresholdDays: threshold,
			}
			if cerr := tx.Create(&reminder).Error; cerr != nil {
				return cerr
			}
		} else if err != nil {
			return err
		}

		if !models.ShouldSendReminder(daysUntil, threshold, reminder.Sent) {
			return nil
		}
		if err := enqueue(tx); err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&reminder).Updates(map[string]interface{}{"sent": true, "sent_at": now}).Error
	})
}

func (rs *ReminderService) activeRecipientEmails() ([]string, error) {
	var emails []string
	err := rs.db.Model(&models.ReportRecipient{}).
		Where("active = true").
		Pluck("email", &emails).Error
	return emails, err
}

func (rs *ReminderService) enqueueInspectionReminder(tx *gorm.DB, insp *models.Inspection, daysUntil int) error {
	recipients, err := rs.activeRecipientEmails()
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		log.Printf("⚠️  No active report recipients, skipping reminder for inspection %s", insp.ID)
		return nil
	}

	assetName := ""
	if insp.Asset != nil {
		assetName = insp.Asset.Name
	}
	typeName := ""
	if insp.InspectionType != nil {
		typeName = insp.InspectionType.Name
	}
	subject := fmt.Sprintf("Inspection due in %d %s: %s - %s", daysUntil, pluralDaysLabel(daysUntil), assetName, typeName)
	body := fmt.Sprintf(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <p>The following inspection is due on <b>%s</b>:</p>
  <ul>
    <li><b>Asset:</b> %s</li>
    <li><b>Inspection:</b> %s</li>
    <li><b>Assignee:</b> %s</li>
  </ul>
</div>`, insp.DueDate, assetName, typeName, insp.Assignee)
	return enqueueEmail(tx, models.EmailInspectionReminder, recipients, subject, body, true)
}

func (rs *ReminderService) enqueueTemplateReminder(tx *gorm.DB, tpl *models.ItemTemplate, daysUntil int) error {
	recipients, err := rs.activeRecipientEmails()
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return nil
	}

	label := models.SynthesizeItemLabel(tpl.UniqueID, tpl.Description, 1)
	subject := fmt.Sprintf("Item expires in %d %s: %s", daysUntil, pluralDaysLabel(daysUntil), label)
	body := fmt.Sprintf(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <p>Checklist item <b>%s</b> expires on <b>%s</b>. Please arrange re-certification.</p>
</div>`, label, tpl.ExpiryDate)
	return enqueueEmail(tx, models.EmailTemplateReminder, recipients, subject, body, true)
}

func pluralDaysLabel(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}

// RunReminderSweep lets an external cron (or an admin) trigger the
// daily passes over HTTP.
// POST /api/v1/admin/jobs/reminders/run
func RunReminderSweep(w http.ResponseWriter, r *http.Request) {
	rs := NewReminderService()
	rs.RunSweeps()
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "sweeps executed"})
}

// TriggerManualAlert sends an immediate ad hoc status email for one
// inspection, bypassing the reminder ledger entirely. Repeated calls
// send repeated emails.
// POST /api/v1/admin/inspections/{id}/alert-now
func TriggerManualAlert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var insp models.Inspection
	if err := config.DB.Preload("Asset").Preload("InspectionType").
		First(&insp, "id = ?", id).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}

	rs := NewReminderService()
	recipients, err := rs.activeRecipientEmails()
	if err != nil || len(recipients) == 0 {
		http.Error(w, "no active report recipients configured", http.StatusConflict)
		return
	}

	today := models.Today()
	assetName := ""
	if insp.Asset != nil {
		assetName = insp.Asset.Name
	}
	typeName := ""
	if insp.InspectionType != nil {
		typeName = insp.InspectionType.Name
	}
	subject := fmt.Sprintf("Inspection status: %s - %s", assetName, typeName)
	body := fmt.Sprintf(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <p>Current status for <b>%s</b> (%s):</p>
  <ul>
    <li><b>Status:</b> %s</li>
    <li><b>Due date:</b> %s</li>
    <li><b>Due:</b> %s</li>
  </ul>
</div>`, assetName, typeName, insp.DisplayClass(today), insp.DueDate, insp.DueLabel(today))

	if err := enqueueEmail(config.DB, models.EmailManualAlert, recipients, subject, body, true); err != nil {
		http.Error(w, "failed to queue alert: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "alert queued"})
}

// RequeueFailedEmails resets failed outbox rows.
// POST /api/v1/admin/jobs/outbox/requeue
func RequeueFailedEmails(w http.ResponseWriter, r *http.Request) {
	n, err := NewOutboxWorker().RequeueFailed()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]int64{"requeued": n})
}
