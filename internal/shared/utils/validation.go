package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
)

const (
	MaxParamsSize  = 256 * 1024 // 256KB - encoded tool parameters
	MaxIDLength    = 128
	MaxNameLength  = 256
	MaxQueryLength = 1024
	// MaxReadings bounds a single series.add or definition file batch.
	MaxReadings = 100_000
)

var (
	// SafeIDPattern matches workspace IDs (series_01J..., budget_01J...)
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// ToolIDPattern matches dotted tool IDs (uncertainty.series.add)
	ToolIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	// CategoryPattern matches service categories
	CategoryPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// ValidateString checks length bounds and rejects NUL bytes
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if value == "" {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	return nil
}

// ValidateID validates a workspace object ID
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}
	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}
	return nil
}

// ValidateToolID validates a dotted tool ID
func ValidateToolID(id string) error {
	if err := ValidateString(id, "tool_id", 1, MaxIDLength, true); err != nil {
		return err
	}
	if !ToolIDPattern.MatchString(id) {
		return fmt.Errorf("tool_id contains invalid characters")
	}
	if !strings.Contains(id, ".") {
		return fmt.Errorf("tool_id must have the form service.tool")
	}
	return nil
}

// ValidateCategory validates a service category filter
func ValidateCategory(category string, required bool) error {
	if err := ValidateString(category, "category", 0, 64, required); err != nil {
		return err
	}
	if category != "" && !CategoryPattern.MatchString(category) {
		return fmt.Errorf("category must contain only lowercase letters, numbers, and hyphens")
	}
	return nil
}

// ValidateName validates a human-readable name such as a budget or source name
func ValidateName(name, fieldName string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return ValidateString(name, fieldName, 1, MaxNameLength, true)
}

// ValidateQuery validates a discovery query
func ValidateQuery(query string) error {
	return ValidateString(strings.TrimSpace(query), "query", 1, MaxQueryLength, true)
}

// ValidateParams bounds the encoded size of tool parameters
func ValidateParams(params map[string]interface{}) error {
	data, err := sonic.Marshal(params)
	if err != nil {
		return fmt.Errorf("params are not serializable: %w", err)
	}
	if len(data) > MaxParamsSize {
		return fmt.Errorf("params size %d exceeds maximum %d bytes", len(data), MaxParamsSize)
	}
	return nil
}
