package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"p9e.in/inspectra/config"
	"p9e.in/inspectra/models"
)

// DigestService builds and queues the weekly compliance digest sent to
// the configured report recipients.
type DigestService struct {
	db *gorm.DB
}

func NewDigestService() *DigestService {
	return &DigestService{
		db: config.DB,
	}
}

// StartScheduler fires the digest every Monday morning. The check runs
// hourly and only sends during the 06:00 hour to avoid duplicates
// within the same day.
func (ds *DigestService) StartScheduler() {
	log.Println("📅 Starting Weekly Digest Scheduler...")

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		if now.Weekday() == time.Monday && now.Hour() == 6 {
			if err := ds.SendDigest(); err != nil {
				log.Printf("❌ Weekly digest failed: %v", err)
			}
		}
	}
}

type digestSections struct {
	DueSoon       []models.Inspection
	OnHold        []models.Inspection
	onHoldBy      map[string]string // inspection id -> email of who held it
	AwaitingCerts []models.Inspection
}

// BuildDigest collects the three report sections: inspections due
// within 14 days, inspections on hold with who put them there, and
// completed inspections still missing certificates.
func (ds *DigestService) BuildDigest(today models.Date) (*digestSections, error) {
	sections := &digestSections{onHoldBy: map[string]string{}}
	horizon := today.AddDays(14)

	if err := ds.db.Preload("Asset").Preload("InspectionType").
		Where("status IN ? AND due_date <= ?",
			[]models.InspectionStatus{models.InspectionPending, models.InspectionOverdue}, horizon.Time()).
		Order("due_date ASC").
		Find(&sections.DueSoon).Error; err != nil {
		return nil, err
	}

	if err := ds.db.Preload("Asset").Preload("InspectionType").
		Where("status = ?", models.InspectionOnHold).
		Order("due_date ASC").
		Find(&sections.OnHold).Error; err != nil {
		return nil, err
	}
	for _, insp := range sections.OnHold {
		var email string
		ds.db.Model(&models.AuditLog{}).
			Select("users.email").
			Joins("JOIN users ON users.id = audit_logs.actor_id").
			Where("audit_logs.entity_id = ? AND audit_logs.action = ?", insp.ID, models.AuditOnHold).
			Order("audit_logs.created_at DESC").
			Limit(1).
			Scan(&email)
		sections.onHoldBy[insp.ID.String()] = email
	}

	if err := ds.db.Preload("Asset").Preload("InspectionType").
		Where("status = ? AND (certs_received = false OR certs_link = '')", models.InspectionCompleted).
		Order("completed_date ASC").
		Find(&sections.AwaitingCerts).Error; err != nil {
		return nil, err
	}

	return sections, nil
}

// SendDigest renders the digest and queues one email to all active
// report recipients.
func (ds *DigestService) SendDigest() error {
	var emails []string
	if err := ds.db.Model(&models.ReportRecipient{}).
		Where("active = true").
		Pluck("email", &emails).Error; err != nil {
		return err
	}
	if len(emails) == 0 {
		log.Println("⚠️  No active report recipients, skipping weekly digest")
		return nil
	}

	today := models.Today()
	sections, err := ds.BuildDigest(today)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Weekly compliance digest - %s", today)
	body := ds.renderDigest(today, sections)
	if err := enqueueEmail(ds.db, models.EmailWeeklyDigest, emails, subject, body, true); err != nil {
		return err
	}
	log.Printf("📧 Weekly digest queued for %d recipient(s)", len(emails))
	return nil
}

func (ds *DigestService) renderDigest(today models.Date, s *digestSections) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">`)
	b.WriteString(fmt.Sprintf("<h2>Compliance digest for %s</h2>", today))

	b.WriteString("<h3>Due within 14 days</h3>")
	if len(s.DueSoon) == 0 {
		b.WriteString("<p>Nothing due in the next 14 days.</p>")
	} else {
		b.WriteString(digestTableHeader("Asset", "Inspection", "Due date", "Status"))
		for i := range s.DueSoon {
			insp := &s.DueSoon[i]
			b.WriteString(digestRow(
				assetNameOf(insp), typeNameOf(insp),
				insp.DueDate.String(), insp.DueLabel(today)))
		}
		b.WriteString("</table>")
	}

	b.WriteString("<h3>On hold</h3>")
	if len(s.OnHold) == 0 {
		b.WriteString("<p>No inspections on hold.</p>")
	} else {
		b.WriteString(digestTableHeader("Asset", "Inspection", "Due date", "Placed on hold by"))
		for i := range s.OnHold {
			insp := &s.OnHold[i]
			b.WriteString(digestRow(
				assetNameOf(insp), typeNameOf(insp),
				insp.DueDate.String(), s.onHoldBy[insp.ID.String()]))
		}
		b.WriteString("</table>")
	}

	b.WriteString("<h3>Completed, awaiting certificates</h3>")
	if len(s.AwaitingCerts) == 0 {
		b.WriteString("<p>No completed inspections are waiting on certificates.</p>")
	} else {
		b.WriteString(digestTableHeader("Asset", "Inspection", "Completed", "Assignee"))
		for i := range s.AwaitingCerts {
			insp := &s.AwaitingCerts[i]
			completed := ""
			if insp.CompletedDate != nil {
				completed = insp.CompletedDate.String()
			}
			b.WriteString(digestRow(
				assetNameOf(insp), typeNameOf(insp), completed, insp.Assignee))
		}
		b.WriteString("</table>")
	}

	b.WriteString("</div>")
	return b.String()
}

func digestTableHeader(cols ...string) string {
	var b strings.Builder
	b.WriteString(`<table border="1" cellpadding="6" cellspacing="0" style="border-collapse:collapse"><tr>`)
	for _, c := range cols {
		b.WriteString("<th>" + c + "</th>")
	}
	b.WriteString("</tr>")
	return b.String()
}

func digestRow(cells ...string) string {
	var b strings.Builder
	b.WriteString("<tr>")
	for _, c := range cells {
		b.WriteString("<td>" + c + "</td>")
	}
	b.WriteString("</tr>")
	return b.String()
}

func assetNameOf(i *models.Inspection) string {
	if i.Asset != nil {
		return i.Asset.Name
	}
	return ""
}

func typeNameOf(i *models.Inspection) string {
	if i.InspectionType != nil {
		return i.InspectionType.Name
	}
	return ""
}

// SendDigestNow triggers an immediate digest, outside the weekly
// schedule.
// POST /api/v1/admin/jobs/digest/run
func SendDigestNow(w http.ResponseWriter, r *http.Request) {
	if err := NewDigestService().SendDigest(); err != nil {
		http.Error(w, "failed to send digest: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "digest queued"})
}

// GetReportRecipients lists digest recipients, active and inactive.
func GetReportRecipients(w http.ResponseWriter, r *http.Request) {
	var recipients []models.ReportRecipient
	if err := config.DB.Order("email ASC").Find(&recipients).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(recipients)
}

type recipientReq struct {
	Email  string `json:"email"`
	Active *bool  `json:"active"`
}

// CreateReportRecipient registers a digest recipient.
func CreateReportRecipient(w http.ResponseWriter, r *http.Request) {
	var req recipientReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		http.Error(w, "a valid email is required", http.StatusBadRequest)
		return
	}

	recipient := models.ReportRecipient{Email: email, Active: true}
	if req.Active != nil {
		recipient.Active = *req.Active
	}
	if err := config.DB.Create(&recipient).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			http.Error(w, "recipient already exists", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(recipient)
}

// UpdateReportRecipient toggles a recipient active or inactive.
func UpdateReportRecipient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var recipient models.ReportRecipient
	if err := config.DB.First(&recipient, "id = ?", id).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}

	var req recipientReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Active != nil {
		recipient.Active = *req.Active
	}
	if email := strings.TrimSpace(strings.ToLower(req.Email)); email != "" {
		recipient.Email = email
	}
	if err := config.DB.Save(&recipient).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(recipient)
}

// DeleteReportRecipient removes a recipient entirely.
func DeleteReportRecipient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := config.DB.Delete(&models.ReportRecipient{}, "id = ?", id).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "recipient removed"})
}
