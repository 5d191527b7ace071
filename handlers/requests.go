package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"p9e.in/inspectra/config"
	"p9e.in/inspectra/middleware"
	"p9e.in/inspectra/models"
)

type createRequestReq struct {
	AdminID uuid.UUID `json:"adminId"`
	Message string    `json:"message"`
}

// CreateUserRequest files a free-text request from the current user to
// a chosen admin, with the notification email going through the
// outbox.
func CreateUserRequest(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req createRequestReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	var admin models.User
	if err := config.DB.Where("id = ? AND role = ?", req.AdminID, models.RoleAdmin).
		First(&admin).Error; err != nil {
		http.Error(w, "admin not found", http.StatusNotFound)
		return
	}

	request := models.UserRequest{
		UserID:  user.ID,
		AdminID: admin.ID,
		Message: req.Message,
	}
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		subject := fmt.Sprintf("New request from %s", user.Name)
		body := fmt.Sprintf(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <p>%s sent you a request:</p>
  <blockquote>%s</blockquote>
  <p>Open the admin console to respond.</p>
</div>`, user.Name, req.Message)
		return enqueueEmail(tx, models.EmailUserRequest, []string{admin.Email}, subject, body, true)
	})
	if err != nil {
		http.Error(w, "failed to create request: "+err.Error(), http.StatusInternalServerError)
		return
	}

	PublishNotification(admin.ID.String(), NotificationEvent{
		Type:     NotifyRequestReceived,
		EntityID: request.ID.String(),
	})

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(request)
}

// GetMyRequests lists requests involving the current user: sent by
// them, or addressed to them when they are an admin.
func GetMyRequests(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	q := config.DB.Preload("User").Preload("Admin").Order("created_at DESC")
	if claims.Role == models.RoleAdmin {
		q = q.Where("admin_id = ? OR user_id = ?", claims.UserID, claims.UserID)
	} else {
		q = q.Where("user_id = ?", claims.UserID)
	}
	if r.URL.Query().Get("resolved") == "false" {
		q = q.Where("resolved = false")
	}

	var requests []models.UserRequest
	if err := q.Find(&requests).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(requests)
}

// ResolveUserRequest marks a request handled. Only the addressed admin
// may resolve it.
func ResolveUserRequest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	claims := middleware.GetClaims(r)

	var request models.UserRequest
	if err := config.DB.First(&request, "id = ?", id).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	if request.AdminID.String() != claims.UserID {
		http.Error(w, "only the addressed admin can resolve this request", http.StatusForbidden)
		return
	}
	if err := config.DB.Model(&request).Update("resolved", true).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	request.Resolved = true
	json.NewEncoder(w).Encode(request)
}
