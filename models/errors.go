package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is matched by every *ValidationError.
	ErrInvalidInput = errors.New("models: invalid input")
	// ErrMethodNotFound is returned for (model, option, method) combinations
	// that have no registered pricer.
	ErrMethodNotFound = errors.New("models: no pricer for combination")
	// ErrNumerical is matched by every *NumericalError.
	ErrNumerical = errors.New("models: numerical failure")
)

// ValidationError reports a field that failed a precondition.
type ValidationError struct {
	Func   string
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s %v: %s", e.Func, e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NumericalError reports a price that came out NaN or infinite, typically
// from degenerate inputs such as zero volatility or zero time to expiry.
type NumericalError struct {
	Func  string
	Value float64
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("%s: non-finite result %v", e.Func, e.Value)
}

func (e *NumericalError) Is(target error) bool { return target == ErrNumerical }

func invalid(fn, field string, value any, reason string) error {
	return &ValidationError{Func: fn, Field: field, Value: value, Reason: reason}
}
