package errors

import (
	"math"
	"unicode"
)

// ValidateAlias validates a user-facing layer alias.
//
// The validation rules are intentionally conservative:
//   - No empty aliases
//   - No control characters
//   - Maximum length of 128 characters
func ValidateAlias(alias string) error {
	if alias == "" {
		return New(ErrCodeInvalidAlias, "alias cannot be empty")
	}

	if len(alias) > 128 {
		return New(ErrCodeInvalidAlias, "alias too long (max 128 characters)")
	}

	for _, r := range alias {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidAlias, "alias contains invalid control characters")
		}
	}

	return nil
}

// ValidateUnitInterval validates that v lies in [0, 1].
// The field name is included in the error message.
func ValidateUnitInterval(field string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return New(ErrCodeInvalidOption, "%s must be a number between 0 and 1, got %v", field, v)
	}
	return nil
}

// ValidateFinite validates that v is a finite number (not NaN or Inf).
// The field name is included in the error message.
func ValidateFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidOption, "%s must be a finite number, got %v", field, v)
	}
	return nil
}
