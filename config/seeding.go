package config

import (
	"errors"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"p9e.in/inspectra/models"
)

// RunAllSeeding runs all seeding operations in the correct order
func RunAllSeeding() error {
	log.Println("=== Starting Database Seeding ===")

	log.Println("[1/2] Seeding Default Admin...")
	if err := SeedDefaultAdmin(); err != nil {
		return err
	}

	log.Println("[2/2] Seeding Inspection Types...")
	SeedInspectionTypes()

	log.Println("=== Database Seeding Complete ===")
	return nil
}

// SeedDefaultAdmin creates the bootstrap admin account from
// ADMIN_EMAIL / ADMIN_PASSWORD. Skipped when either is unset or the
// account already exists.
func SeedDefaultAdmin() error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("⚠️  ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var existing models.User
	err := DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.Printf("Admin %s already exists, skipping", email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("✅ Seeded admin account %s", email)
	return nil
}

// SeedInspectionTypes creates the default inspection categories when
// the table is empty.
func SeedInspectionTypes() {
	var count int64
	DB.Model(&models.InspectionType{}).Count(&count)
	if count > 0 {
		log.Printf("Inspection types already present (%d), skipping", count)
		return
	}

	types := []models.InspectionType{
		{Name: "Annual Load Test", FrequencyMonths: 12},
		{Name: "Thorough Examination", FrequencyMonths: 6},
		{Name: "Visual Inspection", FrequencyMonths: 1},
		{Name: "Pressure System Examination", FrequencyMonths: 12},
	}
	for _, t := range types {
		if err := DB.Create(&t).Error; err != nil {
			log.Printf("⚠️  Failed to seed inspection type %s: %v", t.Name, err)
		}
	}
	log.Printf("✅ Seeded %d inspection types", len(types))
}
