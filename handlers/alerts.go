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

// GetMyAlerts lists checklist alerts addressed to the current admin.
func GetMyAlerts(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	q := config.DB.Preload("Checklist").Preload("Resolutions").
		Where("admin_id = ?", claims.UserID).
		Order("created_at DESC")
	if r.URL.Query().Get("resolved") == "false" {
		q = q.Where("resolved = false")
	}

	var alerts []models.ChecklistAlert
	if err := q.Find(&alerts).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(alerts)
}

type alertDetail struct {
	models.ChecklistAlert
	IssueItems []models.ChecklistItem `json:"issueItems"`
}

// GetAlert returns the alert plus the checklist items needing
// resolution: the items marked defective or not_available, the same
// set the alert was raised for.
func GetAlert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var alert models.ChecklistAlert
	if err := config.DB.Preload("Checklist").Preload("Resolutions").
		First(&alert, "id = ?", id).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}

	issues, err := alertIssueItems(&alert)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(alertDetail{ChecklistAlert: alert, IssueItems: issues})
}

func alertIssueItems(alert *models.ChecklistAlert) ([]models.ChecklistItem, error) {
	var items []models.ChecklistItem
	err := config.DB.
		Where("checklist_id = ? AND status IN ?", alert.ChecklistID,
			[]models.ItemStatus{models.ItemDefective, models.ItemNotAvailable}).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

type resolveAlertReq struct {
	Resolutions map[uuid.UUID]string `json:"resolutions"` // item id -> resolution text
}

// ResolveAlert closes an alert. A non-blank resolution is required for
// every issue item; one resolution row is stored per (alert, item)
// pair and the audit trail gets a concatenated summary.
func ResolveAlert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	admin := middleware.GetUser(r)

	var req resolveAlertReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	var alert models.ChecklistAlert
	if err := config.DB.First(&alert, "id = ?", id).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	if alert.Resolved {
		http.Error(w, "alert is already resolved", http.StatusConflict)
		return
	}

	issues, err := alertIssueItems(&alert)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var missing []string
	for _, item := range issues {
		if strings.TrimSpace(req.Resolutions[item.ID]) == "" {
			missing = append(missing, item.Label)
		}
	}
	if len(missing) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(completionError{
			Error:   "Please provide a resolution for every issue item.",
			Reasons: missing,
		})
		return
	}

	now := time.Now()
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var summary []string
		for _, item := range issues {
			res := models.AlertResolution{
				AlertID:         alert.ID,
				ChecklistItemID: item.ID,
				Resolution:      strings.TrimSpace(req.Resolutions[item.ID]),
			}
			if err := tx.Create(&res).Error; err != nil {
				return err
			}
			summary = append(summary, fmt.Sprintf("%s: %s", item.Label, res.Resolution))
		}

		if err := tx.Model(&alert).Updates(map[string]interface{}{
			"resolved":    true,
			"resolved_by": admin.ID,
			"resolved_at": now,
		}).Error; err != nil {
			return err
		}

		audit := models.AuditLog{
			EntityType: "checklist_alert",
			EntityID:   alert.ID,
			Action:     models.AuditAlertResolved,
			ActorID:    admin.ID,
			Summary:    strings.Join(summary, "; "),
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		http.Error(w, "failed to resolve alert: "+err.Error(), http.StatusInternalServerError)
		return
	}

	config.DB.Preload("Resolutions").First(&alert, "id = ?", alert.ID)
	json.NewEncoder(w).Encode(alert)
}
