package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"pdfcmd/internal/common"
	"pdfcmd/internal/database"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Initialize(database.InMemory)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	return db
}

func TestNewPreferencesService(t *testing.T) {
	db := setupTestDB(t)
	service := NewPreferencesService(db)

	require.NotNil(t, service)
	assert.Same(t, db, service.db)
}

func TestGetPreferences_CreatesDefault(t *testing.T) {
	service := NewPreferencesService(setupTestDB(t))

	prefs, err := service.GetPreferences()
	require.NoError(t, err)
	require.NotNil(t, prefs)

	assert.False(t, prefs.CompressByDefault)
	assert.Empty(t, prefs.ValidationMode)
	assert.Equal(t, common.DefaultHistoryLimit, prefs.HistoryLimit)
}

func TestUpdatePreferences(t *testing.T) {
	service := NewPreferencesService(setupTestDB(t))

	_, err := service.GetPreferences()
	require.NoError(t, err)

	err = service.UpdatePreferences(map[string]interface{}{
		PrefCompressByDefault: true,
		PrefWorkers:           float64(3),
		PrefValidationMode:    "Strict",
	})
	require.NoError(t, err)

	prefs, err := service.GetPreferences()
	require.NoError(t, err)
	assert.True(t, prefs.CompressByDefault)
	assert.Equal(t, 3, prefs.Workers)
	assert.Equal(t, common.ValidationStrict, prefs.ValidationMode)
}

func TestUpdatePreferences_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		data map[string]interface{}
	}{
		{"unknown validation mode", map[string]interface{}{PrefValidationMode: "sloppy"}},
		{"negative workers", map[string]interface{}{PrefWorkers: -2}},
		{"zero history limit", map[string]interface{}{PrefHistoryLimit: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewPreferencesService(setupTestDB(t))
			assert.Error(t, service.UpdatePreferences(tt.data))
		})
	}
}

func TestSet(t *testing.T) {
	service := NewPreferencesService(setupTestDB(t))

	require.NoError(t, service.Set(PrefCompressByDefault, "true"))
	require.NoError(t, service.Set(PrefHistoryLimit, "5"))
	require.NoError(t, service.Set(PrefValidationMode, "relaxed"))

	prefs, err := service.GetPreferences()
	require.NoError(t, err)
	assert.True(t, prefs.CompressByDefault)
	assert.Equal(t, 5, prefs.HistoryLimit)
	assert.Equal(t, common.ValidationRelaxed, prefs.ValidationMode)
}

func TestSet_Errors(t *testing.T) {
	service := NewPreferencesService(setupTestDB(t))

	assert.ErrorContains(t, service.Set("colour", "blue"), "unknown preference")
	assert.Error(t, service.Set(PrefCompressByDefault, "maybe"))
	assert.Error(t, service.Set(PrefWorkers, "many"))
}
