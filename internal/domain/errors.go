package domain

import "fmt"

// Error types for consistent error handling across the API.

// ErrValidation carries every field-level validation failure of a quote
// request, in field order (principal, rate, years).
type ErrValidation struct {
	Details []string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation failed: %d invalid field(s)", len(e.Details))
}

// ErrCalculation indicates the amortization arithmetic produced an unusable
// result (overflow, non-finite or non-positive payment).
type ErrCalculation struct {
	Reason string
}

func (e *ErrCalculation) Error() string {
	return fmt.Sprintf("mortgage calculation failed: %s", e.Reason)
}
