package routes

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	_ "p9e.in/inspectra/docs"
	"p9e.in/inspectra/handlers"
	"p9e.in/inspectra/middleware"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/register", handlers.Register).Methods("POST")
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.HandleFunc("/health", handleHealth).Methods("GET")

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	// Profile and account
	api.HandleFunc("/profile", handlers.GetProfile).Methods("GET")
	api.HandleFunc("/profile/password", handlers.ChangePassword).Methods("PUT")

	registerAssetRoutes(api)
	registerInspectionRoutes(api)
	registerChecklistRoutes(api)
	registerMessagingRoutes(api)

	// =====================================================
	// Admin Routes (require admin role)
	// =====================================================
	admin := api.PathPrefix("/admin").Subrouter()
	registerAdminRoutes(admin)

	return r
}

func registerAssetRoutes(api *mux.Router) {
	api.HandleFunc("/assets", handlers.GetAllAssets).Methods("GET")
	api.HandleFunc("/assets/map", handlers.GetAssetMap).Methods("GET")
	api.HandleFunc("/assets/{id}", handlers.GetAsset).Methods("GET")
	api.HandleFunc("/assets/{id}/events", handlers.GetAssetEvents).Methods("GET")
	api.HandleFunc("/events", handlers.GetAllEvents).Methods("GET")

	api.HandleFunc("/inspection-types", handlers.GetAllInspectionTypes).Methods("GET")
}

func registerInspectionRoutes(api *mux.Router) {
	api.HandleFunc("/inspections", handlers.GetAllInspections).Methods("GET")
	api.HandleFunc("/inspections/{id}", handlers.GetInspection).Methods("GET")
	api.HandleFunc("/inspections/{id}/checklist", handlers.GetChecklistForInspection).Methods("GET")
	api.HandleFunc("/reports/inspections/export", handlers.ExportInspectionRegister).Methods("GET")
}

func registerChecklistRoutes(api *mux.Router) {
	api.HandleFunc("/checklists/mine", handlers.GetMyChecklists).Methods("GET")
	api.HandleFunc("/checklists/{id}", handlers.GetChecklist).Methods("GET")
	api.HandleFunc("/checklists/{id}/items", handlers.SaveChecklistItems).Methods("PUT")
	api.HandleFunc("/checklists/{id}/complete", handlers.CompleteChecklist).Methods("POST")
}

func registerMessagingRoutes(api *mux.Router) {
	api.HandleFunc("/requests", handlers.CreateUserRequest).Methods("POST")
	api.HandleFunc("/requests/mine", handlers.GetMyRequests).Methods("GET")
	api.HandleFunc("/requests/{id}/resolve", handlers.ResolveUserRequest).Methods("POST")

	api.HandleFunc("/alerts/mine", handlers.GetMyAlerts).Methods("GET")
	api.HandleFunc("/alerts/{id}", handlers.GetAlert).Methods("GET")
	api.HandleFunc("/alerts/{id}/resolve", handlers.ResolveAlert).Methods("POST")

	api.HandleFunc("/notifications/counts", handlers.GetNotificationCounts).Methods("GET")
	api.HandleFunc("/notifications/stream", handlers.StreamNotifications).Methods("GET")
}

func registerAdminRoutes(admin *mux.Router) {
	admin.Use(middleware.RequireAdmin)

	// User management
	admin.HandleFunc("/users", handlers.GetAllUsers).Methods("GET")
	admin.HandleFunc("/users/{id}", handlers.UpdateUser).Methods("PUT")

	// Asset registry
	admin.HandleFunc("/assets", handlers.CreateAsset).Methods("POST")
	admin.HandleFunc("/assets/reorder", handlers.ReorderAssets).Methods("PUT")
	admin.HandleFunc("/assets/{id}", handlers.UpdateAsset).Methods("PUT")
	admin.HandleFunc("/assets/{id}", handlers.DeleteAsset).Methods("DELETE")
	admin.HandleFunc("/events", handlers.CreateEvent).Methods("POST")

	// Inspection types and their document folders
	admin.HandleFunc("/inspection-types", handlers.CreateInspectionType).Methods("POST")
	admin.HandleFunc("/inspection-types/{id}", handlers.UpdateInspectionType).Methods("PUT")
	admin.HandleFunc("/inspection-types/{id}", handlers.DeleteInspectionType).Methods("DELETE")
	admin.HandleFunc("/inspection-types/{id}/documents", handlers.UploadInspectionDocument).Methods("POST")

	// Inspection scheduling and lifecycle
	admin.HandleFunc("/inspections", handlers.CreateInspection).Methods("POST")
	admin.HandleFunc("/inspections/batch", handlers.BatchCreateInspections).Methods("POST")
	admin.HandleFunc("/inspections/{id}", handlers.UpdateInspection).Methods("PUT")
	admin.HandleFunc("/inspections/{id}", handlers.DeleteInspection).Methods("DELETE")
	admin.HandleFunc("/inspections/{id}/complete", handlers.CompleteInspection).Methods("POST")
	admin.HandleFunc("/inspections/{id}/hold", handlers.HoldInspection).Methods("POST")
	admin.HandleFunc("/inspections/{id}/alert-now", handlers.TriggerManualAlert).Methods("POST")

	// Checklist item templates and assignment
	admin.HandleFunc("/item-templates", handlers.GetAllItemTemplates).Methods("GET")
	admin.HandleFunc("/item-templates", handlers.CreateItemTemplate).Methods("POST")
	admin.HandleFunc("/item-templates/{id}", handlers.UpdateItemTemplate).Methods("PUT")
	admin.HandleFunc("/item-templates/{id}", handlers.DeleteItemTemplate).Methods("DELETE")
	admin.HandleFunc("/checklists", handlers.CreateChecklist).Methods("POST")
	admin.HandleFunc("/checklists/{id}/resend", handlers.ResendAssignmentEmail).Methods("POST")

	// Weekly digest recipients
	admin.HandleFunc("/report-recipients", handlers.GetReportRecipients).Methods("GET")
	admin.HandleFunc("/report-recipients", handlers.CreateReportRecipient).Methods("POST")
	admin.HandleFunc("/report-recipients/{id}", handlers.UpdateReportRecipient).Methods("PUT")
	admin.HandleFunc("/report-recipients/{id}", handlers.DeleteReportRecipient).Methods("DELETE")

	// Background job triggers for ops and external cron
	admin.HandleFunc("/jobs/reminders/run", handlers.RunReminderSweep).Methods("POST")
	admin.HandleFunc("/jobs/digest/run", handlers.SendDigestNow).Methods("POST")
	admin.HandleFunc("/jobs/outbox/requeue", handlers.RequeueFailedEmails).Methods("POST")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
