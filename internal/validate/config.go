// Package validate provides configuration validation utilities shared by the
// scheduler, API server, backend server and CLI config packages.
//
// VALIDATION UTILITIES:
//   - Port validation: Standard port range checking (1-65535)
//   - String validation: Required field and non-empty string checking
//   - Duration validation: Positive and non-negative durations
//   - Range validation: Inclusive integer and float bounds with named errors
package validate

import (
	"fmt"
	"time"
)

// ValidatePortRange validates that a port number is within the valid range (1-65535).
// Rejects port 0 because clients need a predictable address to reach the proxy.
func ValidatePortRange(port int) error {
	return ValidateField(port, "required,min=1,max=65535")
}

// ValidateRequiredString validates that a string field is not empty.
func ValidateRequiredString(value, fieldName string) error {
	if err := ValidateField(value, "required"); err != nil {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidatePositiveTimeout validates that a timeout duration is positive (> 0).
//
// Used for max-wait, backend timeout and client timeouts where zero would
// either dispatch nothing or fail every call immediately.
func ValidatePositiveTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}

// ValidateNonNegativeDuration validates that d is zero or positive. Zero
// conventionally disables the feature the duration controls.
func ValidateNonNegativeDuration(d time.Duration, name string) error {
	if d < 0 {
		return fmt.Errorf("%s cannot be negative", name)
	}
	return nil
}

// ValidateIntRange validates that value lies in [min, max].
func ValidateIntRange(value, min, max int, name string) error {
	if err := ValidateField(value, fmt.Sprintf("min=%d,max=%d", min, max)); err != nil {
		return fmt.Errorf("%s must be between %d and %d, got %d", name, min, max, value)
	}
	return nil
}

// ValidateFloatMin validates that value is at least min.
func ValidateFloatMin(value, min float64, name string) error {
	if value < min {
		return fmt.Errorf("%s must be at least %g, got %g", name, min, value)
	}
	return nil
}
