package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gorm.io/gorm"
	"p9e.in/inspectra/config"
	"p9e.in/inspectra/models"
)

// GetAllAssets lists assets in their manual display order. Status/type
// filters are passed through as query params; filtered responses are
// still ordered but cannot be reordered (see ReorderAssets).
func GetAllAssets(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Order("sort_order ASC, name ASC")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if assetType := r.URL.Query().Get("type"); assetType != "" {
		q = q.Where("asset_type = ?", assetType)
	}

	var assets []models.Asset
	if err := q.Find(&assets).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(assets)
}

func CreateAsset(w http.ResponseWriter, r *http.Request) {
	var item models.Asset
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if item.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if item.Status == "" {
		item.Status = models.AssetActive
	}

	// New assets append to the end of the manual ordering.
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var max int64
		if err := tx.Model(&models.Asset{}).Select("COALESCE(MAX(sort_order), 0)").Scan(&max).Error; err != nil {
			return err
		}
		item.SortOrder = int(max) + 1
		return tx.Create(&item).Error
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(item)
}

func GetAsset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var item models.Asset
	if err := config.DB.First(&item, "id = ?", id).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(item)
}

func UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var item models.Asset
	if err := config.DB.First(&item, "id = ?", id).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	sortOrder := item.SortOrder
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	// sort_order only moves through the reorder endpoint
	item.SortOrder = sortOrder
	if err := config.DB.Save(&item).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(item)
}

// DeleteAsset removes an asset and cascades to its inspections, events
// and checklists.
func DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var checklistIDs []uuid.UUID
		if err := tx.Model(&models.Checklist{}).
			Joins("JOIN inspections ON inspections.id = checklists.inspection_id").
			Where("inspections.asset_id = ?", id).
			Pluck("checklists.id", &checklistIDs).Error; err != nil {
			return err
		}
		if len(checklistIDs) > 0 {
			if err := tx.Where("checklist_id IN ?", checklistIDs).Delete(&models.ChecklistItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("checklist_id IN ?", checklistIDs).Delete(&models.ChecklistAlert{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", checklistIDs).Delete(&models.Checklist{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("asset_id = ?", id).Delete(&models.Inspection{}).Error; err != nil {
			return err
		}
		if err := tx.Where("asset_id = ?", id).Delete(&models.Event{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Asset{}, "id = ?", id).Error
	})
	if err != nil {
		http.Error(w, "failed to delete asset: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderReq struct {
	AssetIDs []uuid.UUID `json:"assetIds"`
}

// ReorderAssets persists a dense 1..N renumbering in one transaction.
// The submitted list must cover the complete asset set: a client with
// an active status/type filter only sees a subset and gets rejected,
// which keeps the dense-sequence invariant intact.
func ReorderAssets(w http.ResponseWriter, r *http.Request) {
	var req reorderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if len(req.AssetIDs) == 0 {
		http.Error(w, "assetIds is required", http.StatusBadRequest)
		return
	}

	seen := make(map[uuid.UUID]bool, len(req.AssetIDs))
	for _, id := range req.AssetIDs {
		if seen[id] {
			http.Error(w, "duplicate asset id in ordering", http.StatusBadRequest)
			return
		}
		seen[id] = true
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var total int64
		if err := tx.Model(&models.Asset{}).Count(&total).Error; err != nil {
			return err
		}
		if int(total) != len(req.AssetIDs) {
			return fmt.Errorf("ordering must cover all %d assets, got %d (clear filters before reordering)", total, len(req.AssetIDs))
		}
		for i, id := range req.AssetIDs {
			res := tx.Model(&models.Asset{}).Where("id = ?", id).Update("sort_order", i+1)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("unknown asset id %s", id)
			}
		}
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	var assets []models.Asset
	config.DB.Order("sort_order ASC").Find(&assets)
	json.NewEncoder(w).Encode(assets)
}

// GetAssetMap exports every geocoded asset as a GeoJSON
// FeatureCollection for the plant map overlay.
func GetAssetMap(w http.ResponseWriter, r *http.Request) {
	var assets []models.Asset
	if err := config.DB.
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Order("sort_order ASC").
		Find(&assets).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	fc := geojson.NewFeatureCollection()
	for _, a := range assets {
		f := geojson.NewFeature(orb.Point{*a.Longitude, *a.Latitude})
		f.Properties["id"] = a.ID.String()
		f.Properties["name"] = a.Name
		f.Properties["location"] = a.Location
		f.Properties["status"] = string(a.Status)
		f.Properties["assetType"] = a.AssetType
		fc.Append(f)
	}

	w.Header().Set("Content-Type", "application/geo+json")
	json.NewEncoder(w).Encode(fc)
}
