package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"p9e.in/inspectra/config"
	"p9e.in/inspectra/models"
)

func GetAllInspectionTypes(w http.ResponseWriter, r *http.Request) {
	var types []models.InspectionType
	if err := config.DB.Order("name").Find(&types).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(types)
}

func CreateInspectionType(w http.ResponseWriter, r *http.Request) {
	var item models.InspectionType
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if item.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if err := config.DB.Create(&item).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(item)
}

// UpdateInspectionType also carries the drive-link config screen: the
// folder URL per type is just a field here.
func UpdateInspectionType(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var item models.InspectionType
	if err := config.DB.First(&item, "id = ?", id).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := config.DB.Save(&item).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(item)
}

func DeleteInspectionType(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var count int64
	config.DB.Model(&models.Inspection{}).Where("inspection_type_id = ?", id).Count(&count)
	if count > 0 {
		http.Error(w, "inspection type is in use and cannot be deleted", http.StatusConflict)
		return
	}
	if err := config.DB.Delete(&models.InspectionType{}, "id = ?", id).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
