package registry

import (
	"fmt"
)

// Type-safe configuration extraction helpers for pipeline factories.
// Pipeline configuration files are decoded into generic maps; these functions
// eliminate repetitive nil checks and type assertions when reading them.

// GetStringConfig extracts a string value from a config map with a default fallback.
// Returns the default value if:
//   - custom map is nil
//   - key doesn't exist
//   - value is not a string
//   - value is an empty string
func GetStringConfig(custom map[string]interface{}, key, defaultValue string) string {
	if custom == nil {
		return defaultValue
	}

	if val, ok := custom[key].(string); ok && val != "" {
		return val
	}

	return defaultValue
}

// GetBoolConfig extracts a bool value from a config map with a default fallback.
// String values such as "True" (as written by environment substitution) are accepted.
func GetBoolConfig(custom map[string]interface{}, key string, defaultValue bool) bool {
	if custom == nil {
		return defaultValue
	}

	switch v := custom[key].(type) {
	case bool:
		return v
	case string:
		switch v {
		case "1", "t", "T", "true", "True", "TRUE", "yes", "Yes", "YES":
			return true
		case "0", "f", "F", "false", "False", "FALSE", "no", "No", "NO":
			return false
		}
	}

	return defaultValue
}

// GetMapConfig extracts a nested section. Returns nil if it is missing or not a map.
func GetMapConfig(custom map[string]interface{}, key string) map[string]interface{} {
	if custom == nil {
		return nil
	}

	if val, ok := custom[key].(map[string]interface{}); ok {
		return val
	}

	return nil
}

// ValidateRequiredString validates that a required string field is not empty.
func ValidateRequiredString(fieldName, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required and cannot be empty", fieldName)
	}
	return nil
}

// ValidateEnum validates that a string value is one of the allowed options.
func ValidateEnum(fieldName, value string, allowed []string) error {
	for _, option := range allowed {
		if value == option {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %v, got %s", fieldName, allowed, value)
}
