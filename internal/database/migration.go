package database

import (
	"fmt"

	"github.com/JosephCatalano/ledgerleaf/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Merchant{},
		&models.Category{},
		&models.Transaction{},
		&models.Rule{},
		&models.MappingPreset{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
