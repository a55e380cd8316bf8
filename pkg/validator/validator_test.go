package validator

import (
	"testing"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@sub.example.co",
		"user+tag@example.org",
	}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", email, err)
		}
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@example",
	}
	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) = nil, want error", email)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	if !IsValidUUID("5f0c1a70-0d2e-4f3a-9b1c-3e7d8a4b6c2d") {
		t.Error("expected canonical UUID to be valid")
	}
	for _, s := range []string{"", "not-a-uuid", "5f0c1a70-0d2e-4f3a-9b1c"} {
		if IsValidUUID(s) {
			t.Errorf("IsValidUUID(%q) = true, want false", s)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("longenough"); err != nil {
		t.Errorf("ValidatePassword rejected a valid password: %v", err)
	}
	if err := ValidatePassword(""); err == nil {
		t.Error("ValidatePassword accepted an empty password")
	}
	if err := ValidatePassword("short"); err == nil {
		t.Error("ValidatePassword accepted a short password")
	}
}

func TestSanitizeEmail(t *testing.T) {
	got := SanitizeEmail("  User@Example.COM\x00 ")
	if got != "user@example.com" {
		t.Errorf("SanitizeEmail = %q", got)
	}
}
