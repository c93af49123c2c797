package validator

import (
	"reflect"
	"testing"
)

func TestValidateStruct(t *testing.T) {
	type TestStruct struct {
		Position    int    `json:"position" validate:"required,min=1"`
		Perspective string `json:"perspective" validate:"oneof=assessor reviewer"`
		Comment     string `json:"comment" validate:"max=10"`
	}

	tests := []struct {
		name     string
		input    TestStruct
		expected bool
	}{
		{
			name:     "valid struct",
			input:    TestStruct{Position: 2, Perspective: "reviewer", Comment: "short"},
			expected: true,
		},
		{
			name:     "empty optional oneof",
			input:    TestStruct{Position: 1},
			expected: true,
		},
		{
			name:     "missing required field",
			input:    TestStruct{Perspective: "assessor"},
			expected: false,
		},
		{
			name:     "below minimum",
			input:    TestStruct{Position: -1},
			expected: false,
		},
		{
			name:     "unknown option",
			input:    TestStruct{Position: 1, Perspective: "applicant"},
			expected: false,
		},
		{
			name:     "too long",
			input:    TestStruct{Position: 1, Comment: "much too long a comment"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			isValid := err == nil

			if isValid != tt.expected {
				t.Errorf("ValidateStruct() = %v, expected %v, error: %v", isValid, tt.expected, err)
			}
		})
	}
}

func TestValidateStructUsesJSONName(t *testing.T) {
	type req struct {
		Title string `json:"title" validate:"required"`
	}
	err := ValidateStruct(req{})
	if err == nil || err.Error() != "title is required" {
		t.Errorf("error = %v, want 'title is required'", err)
	}
}

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		field    string
		value    string
		expected bool
	}{
		{"name", "John", true},
		{"name", "", false},
		{"name", "   ", false},
	}

	for _, tt := range tests {
		err := ValidateRequired(tt.field, tt.value)
		isValid := err == nil

		if isValid != tt.expected {
			t.Errorf("ValidateRequired(%q, %q) = %v, expected %v", tt.field, tt.value, isValid, tt.expected)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  test  ", "test"},
		{"test\x00string", "teststring"},
		{"normal", "normal"},
	}

	for _, tt := range tests {
		result := SanitizeString(tt.input)
		if result != tt.expected {
			t.Errorf("SanitizeString(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestSanitizeFields(t *testing.T) {
	got := SanitizeFields(map[string]string{" text ": " Works shall begin\x00 ", "  ": "dropped"})
	want := map[string]string{"text": "Works shall begin"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SanitizeFields() = %v, want %v", got, want)
	}
}

func TestUnknownAndMissingFields(t *testing.T) {
	fields := map[string]string{"text": "x", "reason": " ", "colour": "red", "aardvark": "1"}

	unknown := UnknownFields(fields, []string{"title", "text", "reason"})
	if !reflect.DeepEqual(unknown, []string{"aardvark", "colour"}) {
		t.Errorf("UnknownFields() = %v", unknown)
	}

	missing := MissingFields(fields, []string{"text", "reason", "title"})
	if !reflect.DeepEqual(missing, []string{"reason", "title"}) {
		t.Errorf("MissingFields() = %v", missing)
	}
}
