package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrEmptyCategory       = errors.New("category is required")
	ErrEmptyPaymentMethod  = errors.New("payment method is required")
	ErrCardRequired        = errors.New("card is required for credit payments")
	ErrInvalidInstallments = fmt.Errorf("installments must be between 1 and %d", MaxInstallments)
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidIncomeType   = errors.New("income type must be Fixed or Variable")
)

// DataFormatError reports a stored value that cannot be coerced to its
// column type, or a table whose header lacks a required column.
// Line is the 1-based sheet line, the header being line 1; it is zero
// for header problems.
type DataFormatError struct {
	Kind   Kind
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *DataFormatError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s table: column %q: %v", e.Kind, e.Column, e.Err)
	}
	return fmt.Sprintf("%s table line %d: column %q value %q: %v", e.Kind, e.Line, e.Column, e.Value, e.Err)
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// ValidationError rejects a submission before anything is written.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// ConfigurationError reports reference data the user still has to set up,
// such as an empty category list. It is surfaced as a warning.
type ConfigurationError struct {
	Kind    Kind
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsDataFormat reports whether err wraps a DataFormatError.
func IsDataFormat(err error) bool {
	var d *DataFormatError
	return errors.As(err, &d)
}
