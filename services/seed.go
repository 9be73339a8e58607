package services

import (
	"log"

	"claims_crm_go/config"
	"claims_crm_go/models"

	"gorm.io/gorm"
)

// DefaultStatuses are created on first start, in workflow order. The first
// one becomes the default status.
var DefaultStatuses = []models.Status{
	{Name: "In Progress", Color: "#3b82f6", Position: 1},
	{Name: "Records Requested", Color: "#8b5cf6", Position: 2},
	{Name: "Claim Filed", Color: "#f59e0b", Position: 3},
	{Name: "Proposal Received", Color: "#06b6d4", Position: 4},
	{Name: models.StatusNameReimbursed, Color: "#10b981", Position: 5},
	{Name: models.StatusNameCancelled, Color: "#6b7280", Position: 6},
}

// SeedStatuses inserts the default statuses when the table is empty
func SeedStatuses(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Status{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	statuses := make([]models.Status, len(DefaultStatuses))
	copy(statuses, DefaultStatuses)
	if err := db.Create(&statuses).Error; err != nil {
		return err
	}

	log.Printf("[SEED] Created %d practice statuses", len(statuses))
	return nil
}

// SeedAdminFromConfig creates the first admin from SEED_ADMIN_* settings.
// It does nothing when the settings are incomplete or any admin exists.
func SeedAdminFromConfig(db *gorm.DB, cfg *config.Config) error {
	if cfg.SeedAdminUsername == "" || cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("[SEED] Admin accounts already exist, skipping seed")
		return nil
	}

	_, err := CreateAdmin(db, AdminInput{
		Username: cfg.SeedAdminUsername,
		Email:    cfg.SeedAdminEmail,
		Password: cfg.SeedAdminPassword,
		Role:     models.AdminRoleSuperAdmin,
	})
	if err != nil {
		return err
	}

	log.Printf("[SEED] Created admin user: %s", cfg.SeedAdminUsername)
	return nil
}
