package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"p9e.in/inspectra/config"
	"p9e.in/inspectra/models"
)

// filterTemplates applies the asset/type scoping with "all" wildcards:
// a template with a nil asset or type id matches everything on that
// axis.
func filterTemplates(q *gorm.DB, assetID, typeID string) *gorm.DB {
	if assetID != "" {
		q = q.Where("asset_id IS NULL OR asset_id = ?", assetID)
	}
	if typeID != "" {
		q = q.Where("inspection_type_id IS NULL OR inspection_type_id = ?", typeID)
	}
	return q
}

func GetAllItemTemplates(w http.ResponseWriter, r *http.Request) {
	q := filterTemplates(config.DB.Order("unique_id, description"),
		r.URL.Query().Get("assetId"), r.URL.Query().Get("typeId"))

	var templates []models.ItemTemplate
	if err := q.Find(&templates).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(templates)
}

func CreateItemTemplate(w http.ResponseWriter, r *http.Request) {
	var item models.ItemTemplate
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if item.UniqueID == "" && item.Description == "" {
		http.Error(w, "uniqueId or description is required", http.StatusBadRequest)
		return
	}
	if err := config.DB.Create(&item).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(item)
}

func UpdateItemTemplate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var item models.ItemTemplate
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

func DeleteItemTemplate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := config.DB.Delete(&models.ItemTemplate{}, "id = ?", id).Error; err != nil {
		http.Error(w, "failed to delete record", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
