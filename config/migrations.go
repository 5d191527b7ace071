package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"p9e.in/inspectra/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "10052026_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.Asset{}, &models.Event{},
					&models.InspectionType{}, &models.Inspection{})
			},
		},
		{
			ID: "10052026_create_checklist_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.ItemTemplate{}, &models.Checklist{}, &models.ChecklistItem{},
					&models.ChecklistAlert{}, &models.AlertResolution{})
			},
		},
		{
			ID: "12052026_create_messaging_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.UserRequest{}, &models.Reminder{},
					&models.ReportRecipient{}, &models.AuditLog{}, &models.EmailOutbox{})
			},
		},
		{
			ID: "19052026_backfill_asset_sort_order",
			Migrate: func(tx *gorm.DB) error {
				// Dense 1..N ordering by name for any assets created
				// before sort_order existed.
				return tx.Exec(`
					UPDATE assets SET sort_order = ranked.rn
					FROM (
						SELECT id, ROW_NUMBER() OVER (ORDER BY name) AS rn
						FROM assets WHERE deleted_at IS NULL
					) ranked
					WHERE assets.id = ranked.id AND assets.sort_order = 0`).Error
			},
		},
	})

	return m.Migrate()
}
