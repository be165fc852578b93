package handler

import (
	"encoding/json"
	"fmt"

	"github.com/JosephCatalano/ledgerleaf/internal/importer"
	"github.com/JosephCatalano/ledgerleaf/internal/models"

	"gorm.io/gorm"
)

// PresetStore persists a user's chosen column mapping keyed by the derived
// bank key, so later uploads of similarly-named files start from the saved
// mapping.
type PresetStore interface {
	Get(userID uint, bankKey string) (importer.Mapping, bool, error)
	Set(userID uint, bankKey string, m importer.Mapping) error
}

type gormPresetStore struct {
	db *gorm.DB
}

// NewPresetStore returns the gorm-backed PresetStore.
func NewPresetStore(db *gorm.DB) PresetStore {
	return &gormPresetStore{db: db}
}

func (s *gormPresetStore) Get(userID uint, bankKey string) (importer.Mapping, bool, error) {
	var preset models.MappingPreset
	err := s.db.Where("user_id = ? AND bank_key = ?", userID, bankKey).
		First(&preset).Error
	if err == gorm.ErrRecordNotFound {
		return importer.Mapping{}, false, nil
	}
	if err != nil {
		return importer.Mapping{}, false, fmt.Errorf("load preset: %w", err)
	}

	var m importer.Mapping
	if err := json.Unmarshal([]byte(preset.Mapping), &m); err != nil {
		return importer.Mapping{}, false, fmt.Errorf("decode preset: %w", err)
	}
	return m, true, nil
}

func (s *gormPresetStore) Set(userID uint, bankKey string, m importer.Mapping) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}

	var preset models.MappingPreset
	err = s.db.Where("user_id = ? AND bank_key = ?", userID, bankKey).
		First(&preset).Error
	if err == gorm.ErrRecordNotFound {
		preset = models.MappingPreset{
			UserID:  userID,
			BankKey: bankKey,
			Mapping: string(raw),
		}
		if err := s.db.Create(&preset).Error; err != nil {
			return fmt.Errorf("create preset: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("load preset: %w", err)
	}

	preset.Mapping = string(raw)
	if err := s.db.Save(&preset).Error; err != nil {
		return fmt.Errorf("save preset: %w", err)
	}
	return nil
}
