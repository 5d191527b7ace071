package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"p9e.in/inspectra/config"
	"p9e.in/inspectra/middleware"
	"p9e.in/inspectra/models"
)

// inspectionView decorates a stored inspection with the derived badge
// class and countdown label.
type inspectionView struct {
	models.Inspection
	DisplayStatus models.DisplayStatus `json:"displayStatus"`
	DueLabel      string               `json:"dueLabel,omitempty"`
}

func toView(i models.Inspection, today models.Date) inspectionView {
	return inspectionView{
		Inspection:    i,
		DisplayStatus: i.DisplayClass(today),
		DueLabel:      i.DueLabel(today),
	}
}

func GetAllInspections(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Preload("Asset").Preload("InspectionType").Order("due_date ASC")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if assetID := r.URL.Query().Get("assetId"); assetID != "" {
		q = q.Where("asset_id = ?", assetID)
	}
	if typeID := r.URL.Query().Get("typeId"); typeID != "" {
		q = q.Where("inspection_type_id = ?", typeID)
	}

	var inspections []models.Inspection
	if err := q.Find(&inspections).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	today := models.Today()
	views := make([]inspectionView, 0, len(inspections))
	for _, i := range inspections {
		views = append(views, toView(i, today))
	}
	json.NewEncoder(w).Encode(views)
}

func GetInspection(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var item models.Inspection
	if err := config.DB.Preload("Asset").Preload("InspectionType").
		First(&item, "id = ?", id).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(toView(item, models.Today()))
}

func CreateInspection(w http.ResponseWriter, r *http.Request) {
	var item models.Inspection
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if item.AssetID == uuid.Nil || item.InspectionTypeID == uuid.Nil || item.DueDate.IsZero() {
		http.Error(w, "assetId, inspectionTypeId and dueDate are required", http.StatusBadRequest)
		return
	}
	// Inspections are born pending; completion only happens through the
	// gated endpoint.
	item.Status = models.InspectionPending
	item.CompletedDate = nil

	if err := config.DB.Create(&item).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(toView(item, models.Today()))
}

type batchCreateReq struct {
	AssetIDs         []uuid.UUID `json:"assetIds"`
	InspectionTypeID uuid.UUID   `json:"inspectionTypeId"`
	DueDate          models.Date `json:"dueDate"`
	Assignee         string      `json:"assignee"`
	Notes            string      `json:"notes"`
	Linked           bool        `json:"linked"`
}

// BatchCreateInspections schedules the same inspection across many
// assets in one transaction. With linked=true the cohort shares a
// linked_group_id, so a single checklist later covers all of them.
func BatchCreateInspections(w http.ResponseWriter, r *http.Request) {
	var req batchCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if len(req.AssetIDs) == 0 || req.InspectionTypeID == uuid.Nil || req.DueDate.IsZero() {
		http.Error(w, "assetIds, inspectionTypeId and dueDate are required", http.StatusBadRequest)
		return
	}

	var groupID *uuid.UUID
	if req.Linked && len(req.AssetIDs) > 1 {
		g := uuid.New()
		groupID = &g
	}

	var created []models.Inspection
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		for _, assetID := range req.AssetIDs {
			item := models.Inspection{
				AssetID:          assetID,
				InspectionTypeID: req.InspectionTypeID,
				DueDate:          req.DueDate,
				Status:           models.InspectionPending,
				Assignee:         req.Assignee,
				Notes:            req.Notes,
				LinkedGroupID:    groupID,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			created = append(created, item)
		}
		return nil
	})
	if err != nil {
		http.Error(w, "failed to schedule inspections: "+err.Error(), http.StatusInternalServerError)
		return
	}

	today := models.Today()
	views := make([]inspectionView, 0, len(created))
	for _, i := range created {
		views = append(views, toView(i, today))
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(views)
}

func UpdateInspection(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var item models.Inspection
	if err := config.DB.First(&item, "id = ?", id).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	status := item.Status
	completedDate := item.CompletedDate
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	// Completion state never moves through a plain update. A completed
	// inspection can be reopened to pending, but never completed here.
	if item.Status == models.InspectionCompleted && status != models.InspectionCompleted {
		item.Status = status
	}
	item.CompletedDate = completedDate
	if item.Status != models.InspectionCompleted {
		item.CompletedDate = nil
	}
	if err := config.DB.Save(&item).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(toView(item, models.Today()))
}

func DeleteInspection(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := config.DB.Delete(&models.Inspection{}, "id = ?", id).Error; err != nil {
		http.Error(w, "failed to delete record", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type completionError struct {
	Error   string   `json:"error"`
	Reasons []string `json:"reasons"`
}

// CompleteInspection applies the three-clause completion gate. Either
// every clause holds and the inspection flips to completed with a
// server-observed completion date, or nothing changes and every
// failing clause is reported at once.
func CompleteInspection(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	user := middleware.GetUser(r)

	var item models.Inspection
	if err := config.DB.First(&item, "id = ?", id).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	if item.Status == models.InspectionCompleted {
		http.Error(w, "inspection is already completed", http.StatusConflict)
		return
	}

	// Gating fields may arrive with the completion call.
	var patch models.Inspection
	patch = item
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&patch)
	}
	item.NextInspectionDate = patch.NextInspectionDate
	item.NextInspectionNA = patch.NextInspectionNA
	item.CertsReceived = patch.CertsReceived
	item.CertsLink = patch.CertsLink
	item.DefectPortalActions = patch.DefectPortalActions
	item.DefectPortalNA = patch.DefectPortalNA

	if reasons := item.CompletionBlockers(); len(reasons) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(completionError{
			Error:   "Inspection cannot be completed:\n" + strings.Join(reasons, "\n"),
			Reasons: reasons,
		})
		return
	}

	today := models.Today()
	item.Status = models.InspectionCompleted
	item.CompletedDate = &today

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		audit := models.AuditLog{
			EntityType: "inspection",
			EntityID:   item.ID,
			Action:     models.AuditCompleted,
			ActorID:    user.ID,
			Summary:    "Inspection completed",
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		http.Error(w, "failed to complete inspection: "+err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(toView(item, today))
}

type holdReq struct {
	Reason string `json:"reason"`
}

// HoldInspection parks an inspection. The audit entry's author is what
// the weekly digest resolves the "on hold by" column from.
func HoldInspection(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	user := middleware.GetUser(r)

	var req holdReq
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	var item models.Inspection
	if err := config.DB.First(&item, "id = ?", id).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	if item.Status == models.InspectionCompleted {
		http.Error(w, "completed inspections cannot be put on hold", http.StatusConflict)
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&item).Update("status", models.InspectionOnHold).Error; err != nil {
			return err
		}
		details, _ := json.Marshal(map[string]string{"reason": req.Reason})
		audit := models.AuditLog{
			EntityType: "inspection",
			EntityID:   item.ID,
			Action:     models.AuditOnHold,
			ActorID:    user.ID,
			Summary:    req.Reason,
			Details:    datatypes.JSON(details),
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		http.Error(w, "failed to hold inspection: "+err.Error(), http.StatusInternalServerError)
		return
	}
	item.Status = models.InspectionOnHold
	json.NewEncoder(w).Encode(toView(item, models.Today()))
}
