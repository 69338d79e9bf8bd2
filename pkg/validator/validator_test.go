package validator

import (
	"strings"
	"testing"
)

func TestValidateStruct(t *testing.T) {
	type TestStruct struct {
		Email    string  `json:"email" validate:"omitempty,email"`
		Password string  `json:"password" validate:"required,min=8"`
		Name     string  `json:"name" validate:"required,max=10"`
		Action   string  `json:"action" validate:"required,oneof=approve reject"`
		Count    int64   `json:"count" validate:"min=1"`
		Target   *string `json:"target" validate:"max=3"`
	}

	valid := func() TestStruct {
		return TestStruct{Password: "password123", Name: "John", Action: "approve", Count: 1}
	}
	long := "abcd"
	short := "ab"

	tests := []struct {
		name     string
		mutate   func(*TestStruct)
		expected bool
	}{
		{"valid struct", func(*TestStruct) {}, true},
		{"valid email", func(s *TestStruct) { s.Email = "test@example.com" }, true},
		{"invalid email", func(s *TestStruct) { s.Email = "invalid-email" }, false},
		{"missing required field", func(s *TestStruct) { s.Name = "" }, false},
		{"whitespace only is missing", func(s *TestStruct) { s.Name = "   " }, false},
		{"password too short", func(s *TestStruct) { s.Password = "short" }, false},
		{"name too long", func(s *TestStruct) { s.Name = "Johnathan Doe" }, false},
		{"action not in set", func(s *TestStruct) { s.Action = "defer" }, false},
		{"number below min", func(s *TestStruct) { s.Count = 0 }, false},
		{"nil pointer skipped", func(s *TestStruct) { s.Target = nil }, true},
		{"pointer within max", func(s *TestStruct) { s.Target = &short }, true},
		{"pointer over max", func(s *TestStruct) { s.Target = &long }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid()
			tt.mutate(&input)
			err := ValidateStruct(&input)
			isValid := err == nil

			if isValid != tt.expected {
				t.Errorf("ValidateStruct() = %v, expected %v, error: %v", isValid, tt.expected, err)
			}
		})
	}
}

func TestValidateStructUsesJSONNames(t *testing.T) {
	type req struct {
		FocusAreaID int64 `json:"focus_area_id" validate:"required"`
	}
	err := ValidateStruct(&req{})
	if err == nil || !strings.Contains(err.Error(), "focus_area_id") {
		t.Errorf("expected error naming focus_area_id, got %v", err)
	}
}

func TestValidateStructNotStruct(t *testing.T) {
	if err := ValidateStruct("nope"); err == nil {
		t.Error("expected error for non-struct input")
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email    string
		expected bool
	}{
		{"test@example.com", true},
		{"user.name@example.co.uk", true},
		{"invalid-email", false},
		{"@example.com", false},
		{"user@", false},
		{"", false},
		{"user@example", false},
	}

	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		isValid := err == nil

		if isValid != tt.expected {
			t.Errorf("ValidateEmail(%q) = %v, expected %v", tt.email, isValid, tt.expected)
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
