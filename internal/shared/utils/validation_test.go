package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		required bool
		wantErr  bool
	}{
		{"series id", "series_01ARZ3NDEKTSV4RRFFQ69G5FAV", true, false},
		{"empty optional", "", false, false},
		{"empty required", "", true, true},
		{"dot not allowed", "series.1", true, true},
		{"too long", strings.Repeat("a", MaxIDLength+1), true, true},
		{"nul byte", "a\x00b", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id, "id", tt.required)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateToolID(t *testing.T) {
	assert.NoError(t, ValidateToolID("uncertainty.series.add"))
	assert.Error(t, ValidateToolID(""))
	assert.Error(t, ValidateToolID("uncertainty"))
	assert.Error(t, ValidateToolID("uncertainty/propagate"))
}

func TestValidateCategory(t *testing.T) {
	assert.NoError(t, ValidateCategory("metrology", true))
	assert.NoError(t, ValidateCategory("", false))
	assert.Error(t, ValidateCategory("Metrology", false))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("repeatability", "name"))
	assert.Error(t, ValidateName("   ", "name"))
	assert.Error(t, ValidateName(strings.Repeat("x", MaxNameLength+1), "name"))
}

func TestValidateParams(t *testing.T) {
	assert.NoError(t, ValidateParams(map[string]interface{}{"value": 1.5, "unit": "mm"}))

	big := map[string]interface{}{"blob": strings.Repeat("x", MaxParamsSize)}
	assert.Error(t, ValidateParams(big))
}
