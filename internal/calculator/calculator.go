// Package calculator holds the agronomic calculators. Each is an independent
// pure function over its input struct: validate, apply a closed-form formula
// or a small fixed lookup table, return a result. No calculator depends on
// another or on any service call; no partial results are ever returned.
package calculator

import "plant-care-api/internal/apperrors"

// invalid builds the user-facing validation failure for a field.
func invalid(field, reason string) error {
	return apperrors.NewValidationError(field+" "+reason, nil)
}

// requirePositive rejects missing, zero or negative numeric inputs.
func requirePositive(field string, value float64) error {
	if value <= 0 {
		return invalid(field, "must be a positive number")
	}
	return nil
}

// requireNonNegative rejects negative numeric inputs.
func requireNonNegative(field string, value float64) error {
	if value < 0 {
		return invalid(field, "must not be negative")
	}
	return nil
}
