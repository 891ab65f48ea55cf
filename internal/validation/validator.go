package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Validator provides common validation utilities
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks that the number of characters (not bytes) is within [min, max].
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := utf8.RuneCountInString(s)
	return length >= min && length <= max
}

// IsWithinMaxLength checks an optional string against a maximum length. Nil is always valid.
func (v *Validator) IsWithinMaxLength(s *string, max int) bool {
	if s == nil {
		return true
	}
	return utf8.RuneCountInString(*s) <= max
}

// HasControlCharacters reports newlines, tabs and other control runes.
func (v *Validator) HasControlCharacters(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}

// IsValidTaskID checks if a task ID is valid (positive)
func (v *Validator) IsValidTaskID(id int64) bool {
	return id > 0
}

// IsNonNegative checks an optional integer. Nil is always valid.
func (v *Validator) IsNonNegative(n *int) bool {
	return n == nil || *n >= 0
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}
