package services

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/models"
	"gorm.io/gorm"
)

var validSettingTypes = map[string]bool{"string": true, "bool": true, "int": true, "json": true}

// SettingService stores the public key/value settings served to the mini app.
type SettingService struct {
	db *gorm.DB
}

func NewSettingService(db *gorm.DB) *SettingService {
	return &SettingService{db: db}
}

// Public returns every setting with its value decoded by type.
func (s *SettingService) Public() (map[string]interface{}, error) {
	var settings []models.Setting
	if err := s.db.Find(&settings).Error; err != nil {
		return nil, err
	}

	result := make(map[string]interface{}, len(settings))
	for _, st := range settings {
		var value interface{}
		switch st.Type {
		case "bool":
			value, _ = strconv.ParseBool(st.Value)
		case "int":
			value, _ = strconv.Atoi(st.Value)
		case "json":
			if err := json.Unmarshal([]byte(st.Value), &value); err != nil {
				value = st.Value
			}
		default:
			value = st.Value
		}
		result[st.Key] = value
	}
	return result, nil
}

// Set creates or updates a key.
func (s *SettingService) Set(key, value, typ string) (*models.Setting, error) {
	if key == "" {
		return nil, invalid("key is required")
	}
	if value == "" {
		return nil, invalid("value is required")
	}
	if typ == "" {
		typ = "string"
	}
	if !validSettingTypes[typ] {
		return nil, invalid("type must be string, bool, int, or json")
	}

	var setting models.Setting
	err := s.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.Setting{Key: key, Value: value, Type: typ}
		if err := s.db.Create(&setting).Error; err != nil {
			return nil, err
		}
		return &setting, nil
	}
	if err != nil {
		return nil, err
	}

	setting.Value = value
	setting.Type = typ
	if err := s.db.Save(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// Delete reports whether the key existed.
func (s *SettingService) Delete(key string) (bool, error) {
	result := s.db.Where("key = ?", key).Delete(&models.Setting{})
	return result.RowsAffected > 0, result.Error
}

// SeedDefaults inserts the given settings when their keys are missing.
// Existing values are never overwritten.
func (s *SettingService) SeedDefaults(defaults []models.Setting) error {
	for _, d := range defaults {
		var existing models.Setting
		err := s.db.Where("key = ?", d.Key).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		setting := d
		if err := s.db.Create(&setting).Error; err != nil {
			return err
		}
	}
	return nil
}
