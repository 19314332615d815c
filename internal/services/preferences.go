package services

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"pdfcmd/internal/common"
	"pdfcmd/internal/models"
)

// Preference keys accepted by Set
const (
	PrefCompressByDefault = "compress_by_default"
	PrefValidationMode    = "validation_mode"
	PrefWorkers           = "workers"
	PrefHistoryLimit      = "history_limit"
)

// PreferenceKeys lists the keys accepted by Set
var PreferenceKeys = []string{PrefCompressByDefault, PrefValidationMode, PrefWorkers, PrefHistoryLimit}

// PreferencesService handles user preferences operations
type PreferencesService struct {
	db *gorm.DB
}

// NewPreferencesService creates a new preferences service
func NewPreferencesService(db *gorm.DB) *PreferencesService {
	return &PreferencesService{db: db}
}

// GetPreferences gets the current user preferences
func (s *PreferencesService) GetPreferences() (*models.UserPreferencesData, error) {
	prefs, err := models.GetOrCreatePreferences(s.db)
	if err != nil {
		return nil, err
	}

	prefsData := prefs.GetPreferences()
	return &prefsData, nil
}

// UpdatePreferences updates user preferences. Numbers may arrive as int or
// float64 (decoded JSON).
func (s *PreferencesService) UpdatePreferences(data map[string]interface{}) error {
	prefs, err := models.GetOrCreatePreferences(s.db)
	if err != nil {
		return err
	}

	currentPrefs := prefs.GetPreferences()

	if val, ok := data[PrefCompressByDefault]; ok {
		if compress, ok := val.(bool); ok {
			currentPrefs.CompressByDefault = compress
		}
	}

	if val, ok := data[PrefValidationMode]; ok {
		if mode, ok := val.(string); ok {
			mode = strings.ToLower(mode)
			if mode != "" && mode != common.ValidationRelaxed && mode != common.ValidationStrict {
				return fmt.Errorf("unknown validation mode %q", mode)
			}
			currentPrefs.ValidationMode = mode
		}
	}

	if val, ok := data[PrefWorkers]; ok {
		if workers, ok := asInt(val); ok {
			if workers < 0 {
				return fmt.Errorf("workers must not be negative, got %d", workers)
			}
			currentPrefs.Workers = workers
		}
	}

	if val, ok := data[PrefHistoryLimit]; ok {
		if limit, ok := asInt(val); ok {
			if limit <= 0 {
				return fmt.Errorf("history limit must be positive, got %d", limit)
			}
			currentPrefs.HistoryLimit = limit
		}
	}

	if err := prefs.SetPreferences(currentPrefs); err != nil {
		return err
	}

	return s.db.Save(prefs).Error
}

// Set parses a single key/value pair given as strings and stores it
func (s *PreferencesService) Set(key, value string) error {
	var parsed interface{}

	switch key {
	case PrefCompressByDefault:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
		}
		parsed = b
	case PrefValidationMode:
		parsed = value
	case PrefWorkers, PrefHistoryLimit:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
		}
		parsed = n
	default:
		return fmt.Errorf("unknown preference %q (known: %s)", key, strings.Join(PreferenceKeys, ", "))
	}

	return s.UpdatePreferences(map[string]interface{}{key: parsed})
}

func asInt(val interface{}) (int, bool) {
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
