package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"p9e.in/inspectra/config"
	"p9e.in/inspectra/models"
)

// GetAssetEvents lists an asset's history, newest first.
func GetAssetEvents(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["id"]

	var events []models.Event
	if err := config.DB.Where("asset_id = ?", assetID).
		Order("start_date DESC, created_at DESC").
		Find(&events).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(events)
}

// GetAllEvents lists events across assets for the admin events screen.
func GetAllEvents(w http.ResponseWriter, r *http.Request) {
	var events []models.Event
	if err := config.DB.Preload("Asset").
		Order("start_date DESC, created_at DESC").
		Limit(500).
		Find(&events).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(events)
}

// CreateEvent appends a history record and, as a side effect,
// overwrites the asset's current status (and location when given).
// Both writes commit together.
func CreateEvent(w http.ResponseWriter, r *http.Request) {
	var item models.Event
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if item.Description == "" {
		http.Error(w, "description is required", http.StatusBadRequest)
		return
	}
	if item.ResultingStatus != models.AssetActive && item.ResultingStatus != models.AssetDecommissioned {
		http.Error(w, "resultingStatus must be active or decommissioned", http.StatusBadRequest)
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var asset models.Asset
		if err := tx.First(&asset, "id = ?", item.AssetID).Error; err != nil {
			return err
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{"status": item.ResultingStatus}
		if item.Location != "" {
			updates["location"] = item.Location
		}
		return tx.Model(&asset).Updates(updates).Error
	})
	if err != nil {
		http.Error(w, "failed to record event: "+err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(item)
}
