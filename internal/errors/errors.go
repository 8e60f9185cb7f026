// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInsufficientData = errors.New("capture window closed with no ticks")
	ErrAmbiguousSignal  = errors.New("both breakout directions satisfied")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrSessionNotActive = errors.New("session not active")
	ErrSymbolNotFound   = errors.New("symbol not found")
	ErrDatabaseError    = errors.New("database error")
)

// PreconditionError indicates an operation was invoked on an entity in the
// wrong lifecycle state. This is a sequencing bug upstream and is treated as
// a hard failure for the affected instrument.
type PreconditionError struct {
	Entity string
	State  string
	Op     string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition violated: %s on %s in state %s", e.Op, e.Entity, e.State)
}

// NewPreconditionError creates a new PreconditionError.
func NewPreconditionError(entity, state, op string) *PreconditionError {
	return &PreconditionError{Entity: entity, State: state, Op: op}
}

// LimitError represents a daily risk limit rejection. It is an expected
// control outcome, logged as a rejection rather than a failure.
type LimitError struct {
	Rule    string
	Current float64
	Limit   float64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("limit breached [%s]: current %.2f, limit %.2f", e.Rule, e.Current, e.Limit)
}

// NewLimitError creates a new LimitError.
func NewLimitError(rule string, current, limit float64) *LimitError {
	return &LimitError{Rule: rule, Current: current, Limit: limit}
}

// DataError represents a market-data problem for one instrument. Data errors
// never affect other instruments' processing.
type DataError struct {
	Symbol  string
	Message string
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s]: %s: %v", e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s]: %s", e.Symbol, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(symbol, message string, err error) *DataError {
	return &DataError{Symbol: symbol, Message: message, Err: err}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
