// Package errors provides custom error types for domain-specific errors.
//
// Upstream and parse failures never cross the market-data service
// boundary as control flow: they are logged and mapped to the absent
// or empty result the caller is documented to receive. The types here
// exist so that logs and tests can distinguish the failure classes.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrDataUnavailable    = errors.New("market data unavailable")
	ErrInstrumentNotFound = errors.New("instrument not found")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrCacheUnavailable   = errors.New("cache backend unavailable")
)

// APIError represents a failed call against the exchange API.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("deribit api error [%s] status=%d: %s: %v", e.Endpoint, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("deribit api error [%s] status=%d: %s", e.Endpoint, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new APIError.
func NewAPIError(endpoint string, status int, message string, err error) *APIError {
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: status,
		Message:    message,
		Err:        err,
	}
}

// DataError represents a malformed or incomplete exchange payload.
type DataError struct {
	DataType   string
	Instrument string
	Message    string
	Err        error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.DataType, e.Instrument, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.DataType, e.Instrument, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(dataType, instrument, message string, err error) *DataError {
	return &DataError{
		DataType:   dataType,
		Instrument: instrument,
		Message:    message,
		Err:        err,
	}
}

// ValidationError represents invalid presentation-layer input.
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
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
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
