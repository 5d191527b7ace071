package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"p9e.in/inspectra/config"
	"p9e.in/inspectra/middleware"
	"p9e.in/inspectra/models"
)

type createChecklistReq struct {
	InspectionID   uuid.UUID   `json:"inspectionId"`
	AssignedUserID uuid.UUID   `json:"assignedUserId"`
	TemplateIDs    []uuid.UUID `json:"templateIds"`
	DueDate        models.Date `json:"dueDate"`
}

// CreateChecklist builds a checklist from an inspection plus a chosen
// set of templates and assigns it to a user. The checklist binds to
// the inspection's own asset/type pair regardless of which filter
// picked the templates. The assignment email goes through the outbox
// in the same transaction, so a dead mail server never loses the
// intent nor blocks the creation.
func CreateChecklist(w http.ResponseWriter, r *http.Request) {
	creator := middleware.GetUser(r)

	var req createChecklistReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.InspectionID == uuid.Nil || req.AssignedUserID == uuid.Nil {
		http.Error(w, "inspectionId and assignedUserId are required", http.StatusBadRequest)
		return
	}
	if len(req.TemplateIDs) == 0 {
		http.Error(w, "at least one template must be selected", http.StatusBadRequest)
		return
	}

	var inspection models.Inspection
	if err := config.DB.Preload("Asset").Preload("InspectionType").
		First(&inspection, "id = ?", req.InspectionID).Error; err != nil {
		http.Error(w, "inspection not found", http.StatusNotFound)
		return
	}
	var assignee models.User
	if err := config.DB.First(&assignee, "id = ?", req.AssignedUserID).Error; err != nil {
		http.Error(w, "assigned user not found", http.StatusNotFound)
		return
	}

	// Load selected templates, preserving the submitted order.
	var templates []models.ItemTemplate
	if err := config.DB.Where("id IN ?", req.TemplateIDs).Find(&templates).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	byID := make(map[uuid.UUID]models.ItemTemplate, len(templates))
	for _, t := range templates {
		byID[t.ID] = t
	}

	dueDate := req.DueDate
	if dueDate.IsZero() {
		dueDate = inspection.DueDate
	}

	checklist := models.Checklist{
		InspectionID:     inspection.ID,
		AssetID:          inspection.AssetID,
		InspectionTypeID: inspection.InspectionTypeID,
		AssignedUserID:   assignee.ID,
		Status:           models.ChecklistSent,
		DueDate:          dueDate,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&checklist).Error; err != nil {
			return err
		}
		for n, id := range req.TemplateIDs {
			t, ok := byID[id]
			if !ok {
				return fmt.Errorf("unknown template id %s", id)
			}
			tid := t.ID
			item := models.ChecklistItem{
				ChecklistID: checklist.ID,
				TemplateID:  &tid,
				Label:       t.Label(n + 1),
				Status:      models.ItemNotChecked,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			checklist.Items = append(checklist.Items, item)
		}

		audit := models.AuditLog{
			EntityType: "checklist",
			EntityID:   checklist.ID,
			Action:     models.AuditChecklistCreated,
			ActorID:    creator.ID,
			Summary:    fmt.Sprintf("Checklist with %d items assigned to %s", len(req.TemplateIDs), assignee.Name),
		}
		if err := tx.Create(&audit).Error; err != nil {
			return err
		}

		subject, body := assignmentEmail(&inspection, &checklist, assignee.Name)
		return enqueueEmail(tx, models.EmailChecklistAssignment, []string{assignee.Email}, subject, body, true)
	})
	if err != nil {
		http.Error(w, "failed to create checklist: "+err.Error(), http.StatusInternalServerError)
		return
	}

	PublishNotification(assignee.ID.String(), NotificationEvent{
		Type:     NotifyChecklistAssigned,
		EntityID: checklist.ID.String(),
	})

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(checklist)
}

func assignmentEmail(inspection *models.Inspection, checklist *models.Checklist, assigneeName string) (string, string) {
	assetName := ""
	if inspection.Asset != nil {
		assetName = inspection.Asset.Name
	}
	typeName := ""
	if inspection.InspectionType != nil {
		typeName = inspection.InspectionType.Name
	}
	subject := fmt.Sprintf("New checklist assigned: %s - %s", assetName, typeName)
	body := fmt.Sprintf(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <p>Hello %s,</p>
  <p>You have been assigned a new inspection checklist:</p>
  <ul>
    <li><b>Asset:</b> %s</li>
    <li><b>Inspection:</b> %s</li>
    <li><b>Due date:</b> %s</li>
    <li><b>Items:</b> %d</li>
  </ul>
  <p>Please sign in and complete it from your checklist inbox.</p>
</div>`, assigneeName, assetName, typeName, checklist.DueDate, len(checklist.Items))
	return subject, body
}

// GetMyChecklists is the per-user checklist inbox.
func GetMyChecklists(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	q := config.DB.Preload("Items").Preload("Inspection").
		Preload("Inspection.Asset").Preload("Inspection.InspectionType").
		Where("assigned_user_id = ?", claims.UserID).
		Order("due_date ASC")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var checklists []models.Checklist
	if err := q.Find(&checklists).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(checklists)
}

func GetChecklist(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var checklist models.Checklist
	if err := config.DB.Preload("Items").Preload("AssignedUser").
		Preload("Inspection").Preload("Inspection.Asset").Preload("Inspection.InspectionType").
		First(&checklist, "id = ?", id).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(checklist)
}

// GetChecklistForInspection resolves the checklist covering an
// inspection, searching its whole linked group: any member of a
// linked cohort resolves to the shared checklist.
func GetChecklistForInspection(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var inspection models.Inspection
	if err := config.DB.First(&inspection, "id = ?", id).Error; err != nil {
		http.Error(w, "inspection not found", http.StatusNotFound)
		return
	}

	q := config.DB.Preload("Items").Preload("AssignedUser")
	if inspection.LinkedGroupID != nil {
		q = q.Where("inspection_id IN (?)",
			config.DB.Model(&models.Inspection{}).Select("id").
				Where("linked_group_id = ?", inspection.LinkedGroupID))
	} else {
		q = q.Where("inspection_id = ?", inspection.ID)
	}

	var checklist models.Checklist
	if err := q.First(&checklist).Error; err != nil {
		http.Error(w, "no checklist for this inspection", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(checklist)
}

type itemPatch struct {
	ID      uuid.UUID         `json:"id"`
	Status  models.ItemStatus `json:"status"`
	Comment string            `json:"comment"`
}

type saveChecklistReq struct {
	Items    []itemPatch `json:"items"`
	AdminIDs []uuid.UUID `json:"adminIds"`
}

// SaveChecklistItems persists item progress without completing. All
// rows move in one transaction.
func SaveChecklistItems(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req saveChecklistReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	var checklist models.Checklist
	if err := config.DB.First(&checklist, "id = ?", id).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	if checklist.Status == models.ChecklistCompleted {
		http.Error(w, "checklist is already completed", http.StatusConflict)
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		return applyItemPatches(tx, checklist.ID, req.Items)
	})
	if err != nil {
		http.Error(w, "failed to save items: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func applyItemPatches(tx *gorm.DB, checklistID uuid.UUID, patches []itemPatch) error {
	for _, p := range patches {
		res := tx.Model(&models.ChecklistItem{}).
			Where("id = ? AND checklist_id = ?", p.ID, checklistID).
			Updates(map[string]interface{}{"status": p.Status, "comment": p.Comment})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("item %s does not belong to this checklist", p.ID)
		}
	}
	return nil
}

// CompleteChecklist validates and applies the final save: every item
// must carry a real status, issue items need comments, and when issues
// exist at least one admin must be selected. Item updates, the status
// flip, the alert rows and the alert emails commit as one transaction;
// alerts are deduplicated against existing unresolved (checklist,
// admin) pairs.
func CompleteChecklist(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	actor := middleware.GetUser(r)

	var req saveChecklistReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	var checklist models.Checklist
	if err := config.DB.Preload("Items").Preload("Inspection").
		Preload("Inspection.Asset").Preload("Inspection.InspectionType").
		First(&checklist, "id = ?", id).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	if checklist.Status == models.ChecklistCompleted {
		http.Error(w, "checklist is already completed", http.StatusConflict)
		return
	}

	// Merge the submitted statuses over the stored items before
	// validating, so the gate sees what would be saved.
	merged := make([]models.ChecklistItem, len(checklist.Items))
	copy(merged, checklist.Items)
	patchByID := make(map[uuid.UUID]itemPatch, len(req.Items))
	for _, p := range req.Items {
		patchByID[p.ID] = p
	}
	for i := range merged {
		if p, ok := patchByID[merged[i].ID]; ok {
			merged[i].Status = p.Status
			merged[i].Comment = p.Comment
		}
	}

	if reasons := checklist.CompletionBlockers(merged, len(req.AdminIDs)); len(reasons) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(completionError{
			Error:   strings.Join(reasons, "\n"),
			Reasons: reasons,
		})
		return
	}

	issues := models.IssueItems(merged)

	var admins []models.User
	if len(issues) > 0 {
		if err := config.DB.Where("id IN ? AND role = ?", req.AdminIDs, models.RoleAdmin).
			Find(&admins).Error; err != nil || len(admins) == 0 {
			http.Error(w, models.MsgAdminsRequired, http.StatusUnprocessableEntity)
			return
		}
	}

	now := time.Now()
	var notified []models.User
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := applyItemPatches(tx, checklist.ID, req.Items); err != nil {
			return err
		}
		if err := tx.Model(&checklist).Updates(map[string]interface{}{
			"status":       models.ChecklistCompleted,
			"completed_at": now,
		}).Error; err != nil {
			return err
		}

		if len(issues) == 0 {
			return nil
		}

		message := issueSummary(issues)
		for _, admin := range admins {
			// At most one unresolved alert per (checklist, admin).
			var existing int64
			if err := tx.Model(&models.ChecklistAlert{}).
				Where("checklist_id = ? AND admin_id = ? AND resolved = false", checklist.ID, admin.ID).
				Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				continue
			}
			alert := models.ChecklistAlert{
				ChecklistID: checklist.ID,
				AdminID:     admin.ID,
				RaisedByID:  actor.ID,
				Message:     message,
			}
			if err := tx.Create(&alert).Error; err != nil {
				return err
			}
			subject, body := issueAlertEmail(&checklist, actor.Name, issues)
			if err := enqueueEmail(tx, models.EmailChecklistIssueAlert, []string{admin.Email}, subject, body, true); err != nil {
				return err
			}
			notified = append(notified, admin)
		}
		return nil
	})
	if err != nil {
		http.Error(w, "failed to complete checklist: "+err.Error(), http.StatusInternalServerError)
		return
	}

	for _, admin := range notified {
		PublishNotification(admin.ID.String(), NotificationEvent{
			Type:     NotifyAlertRaised,
			EntityID: checklist.ID.String(),
		})
	}

	config.DB.Preload("Items").First(&checklist, "id = ?", checklist.ID)
	json.NewEncoder(w).Encode(checklist)
}

func issueSummary(issues []models.ChecklistItem) string {
	var b strings.Builder
	for i, item := range issues {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s (%s)", item.Label, item.Status, strings.TrimSpace(item.Comment))
	}
	return b.String()
}

func issueAlertEmail(checklist *models.Checklist, reporterName string, issues []models.ChecklistItem) (string, string) {
	assetName := ""
	typeName := ""
	if checklist.Inspection != nil {
		if checklist.Inspection.Asset != nil {
			assetName = checklist.Inspection.Asset.Name
		}
		if checklist.Inspection.InspectionType != nil {
			typeName = checklist.Inspection.InspectionType.Name
		}
	}
	subject := fmt.Sprintf("Checklist issues reported: %s - %s", assetName, typeName)

	var rows strings.Builder
	for _, item := range issues {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>", item.Label, item.Status, item.Comment)
	}
	body := fmt.Sprintf(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <p>%s completed a checklist for <b>%s</b> (%s) and reported the following issues:</p>
  <table border="1" cellpadding="6" cellspacing="0">
    <tr><th>Item</th><th>Status</th><th>Comment</th></tr>
    %s
  </table>
  <p>Please review and resolve the alert in the admin console.</p>
</div>`, reporterName, assetName, typeName, rows.String())
	return subject, body
}

// ResendAssignmentEmail re-enqueues the assignment email on demand.
func ResendAssignmentEmail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var checklist models.Checklist
	if err := config.DB.Preload("Items").Preload("AssignedUser").
		Preload("Inspection").Preload("Inspection.Asset").Preload("Inspection.InspectionType").
		First(&checklist, "id = ?", id).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	if checklist.AssignedUser == nil {
		http.Error(w, "checklist has no assigned user", http.StatusConflict)
		return
	}

	subject, body := assignmentEmail(checklist.Inspection, &checklist, checklist.AssignedUser.Name)
	if err := enqueueEmail(config.DB, models.EmailChecklistAssignment,
		[]string{checklist.AssignedUser.Email}, subject, body, true); err != nil {
		http.Error(w, "failed to queue email: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
