package registry

import (
	"reflect"
	"testing"
)

func TestGetStringConfig(t *testing.T) {
	tests := []struct {
		name         string
		custom       map[string]interface{}
		key          string
		defaultValue string
		want         string
	}{
		{"nil map", nil, "key", "default", "default"},
		{"missing key", map[string]interface{}{}, "key", "default", "default"},
		{"valid string", map[string]interface{}{"key": "value"}, "key", "default", "value"},
		{"empty string", map[string]interface{}{"key": ""}, "key", "default", "default"},
		{"wrong type", map[string]interface{}{"key": 123}, "key", "default", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetStringConfig(tt.custom, tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("GetStringConfig() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetBoolConfig(t *testing.T) {
	tests := []struct {
		name         string
		custom       map[string]interface{}
		key          string
		defaultValue bool
		want         bool
	}{
		{"nil map", nil, "key", true, true},
		{"valid true", map[string]interface{}{"key": true}, "key", false, true},
		{"string True", map[string]interface{}{"key": "True"}, "key", false, true},
		{"string False", map[string]interface{}{"key": "False"}, "key", true, false},
		{"unparseable string", map[string]interface{}{"key": "maybe"}, "key", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetBoolConfig(tt.custom, tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("GetBoolConfig() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetMapConfig(t *testing.T) {
	section := map[string]interface{}{"location_id": "humboldt"}
	custom := map[string]interface{}{"pipeline": section, "scalar": "x"}

	if got := GetMapConfig(custom, "pipeline"); !reflect.DeepEqual(got, section) {
		t.Errorf("GetMapConfig() = %v, want %v", got, section)
	}
	if got := GetMapConfig(custom, "scalar"); got != nil {
		t.Errorf("GetMapConfig(scalar) = %v, want nil", got)
	}
	if got := GetMapConfig(nil, "pipeline"); got != nil {
		t.Errorf("GetMapConfig(nil) = %v, want nil", got)
	}
}

func TestValidateRequiredString(t *testing.T) {
	if err := ValidateRequiredString("datastream", ""); err == nil {
		t.Error("expected error for empty value")
	}
	if err := ValidateRequiredString("datastream", "humboldt.buoy.a0"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateEnum(t *testing.T) {
	allowed := []string{"a0", "a1", "b0"}

	if err := ValidateEnum("data_level", "a1", allowed); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateEnum("data_level", "c9", allowed); err == nil {
		t.Error("expected error for value outside enum")
	}
}
