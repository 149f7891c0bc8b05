package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyEmail indicates the email address is empty
	ErrEmptyEmail = errors.New("email address cannot be empty")

	// ErrInvalidEmail indicates the email address is not plausible
	ErrInvalidEmail = errors.New("email address is not valid")

	// ErrInvalidPhone indicates the phone number contains invalid characters
	// or is the wrong length
	ErrInvalidPhone = errors.New("phone number must be 8 to 15 digits")
)

// emailRegex accepts a plausible address without attempting full RFC
// validation; the booking backend is the final authority
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// digitsRegex matches digits only
var digitsRegex = regexp.MustCompile(`^\d+$`)

// ContactValidator validates the passenger contact fields collected
// during checkout
type ContactValidator struct{}

// NewContactValidator creates a new contact validator instance
func NewContactValidator() *ContactValidator {
	return &ContactValidator{}
}

// ValidateEmail validates an email address
// Returns the trimmed, lowercased address and an error if invalid
func (v *ContactValidator) ValidateEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrEmptyEmail
	}
	if !emailRegex.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// ValidatePhone validates an optional phone number
// Accepts formats like +855 12 345 678 or 012-345-678
// Returns the sanitized number (digits only) and an error if invalid.
// An empty phone is allowed and returns an empty string.
func (v *ContactValidator) ValidatePhone(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", nil
	}

	sanitized := v.SanitizePhone(phone)
	if !digitsRegex.MatchString(sanitized) {
		return "", ErrInvalidPhone
	}
	if len(sanitized) < 8 || len(sanitized) > 15 {
		return "", ErrInvalidPhone
	}

	return sanitized, nil
}

// SanitizePhone removes all common separators from a phone number
func (v *ContactValidator) SanitizePhone(phone string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	phone = strings.ReplaceAll(phone, "(", "")
	phone = strings.ReplaceAll(phone, ")", "")
	phone = strings.ReplaceAll(phone, "+", "")
	phone = strings.ReplaceAll(phone, ".", "")
	return phone
}

// IsValidEmail is a convenience method that returns true if email is valid
func (v *ContactValidator) IsValidEmail(email string) bool {
	_, err := v.ValidateEmail(email)
	return err == nil
}
