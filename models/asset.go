package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssetStatus string

const (
	AssetActive         AssetStatus = "active"
	AssetDecommissioned AssetStatus = "decommissioned"
)

// Asset is a piece of plant equipment that inspections are tracked
// against. SortOrder is a dense 1..N sequence over the unfiltered list
// and is only ever rewritten by the reorder endpoint.
type Asset struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string      `gorm:"size:200;not null" json:"name"`
	Location    string      `gorm:"size:200" json:"location"`
	Status      AssetStatus `gorm:"size:30;not null;default:active" json:"status"`
	AssetType   string      `gorm:"size:100" json:"assetType"`
	InstallDate *Date       `gorm:"type:date" json:"installDate,omitempty"`
	Notes       string      `gorm:"type:text" json:"notes"`
	SortOrder   int         `gorm:"not null;default:0;index" json:"sortOrder"`

	// Optional geocoding for the plant map export.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *Asset) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// Event is an immutable history record attached to an asset. Creating
// one also overwrites the asset's current status (and location when
// given); events themselves are never updated or deleted except by the
// asset's own cascade.
type Event struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	AssetID         uuid.UUID   `gorm:"type:uuid;index;not null" json:"assetId"`
	Asset           *Asset      `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE" json:"asset,omitempty"`
	StartDate       Date        `gorm:"type:date;not null" json:"startDate"`
	EndDate         *Date       `gorm:"type:date" json:"endDate,omitempty"`
	Description     string      `gorm:"type:text;not null" json:"description"`
	ResultingStatus AssetStatus `gorm:"size:30;not null" json:"resultingStatus"`
	Location        string      `gorm:"size:200" json:"location"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
