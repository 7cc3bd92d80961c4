package domain

import (
	"errors"
	"fmt"
)

// Recoverable-by-degrade failures. Any of these during a swap transitions the
// orchestrator to the simulated path instead of propagating upward.
var (
	// ErrMarketNotFound is returned when no listed market pairs the two denoms.
	ErrMarketNotFound = errors.New("no tradable market for pair")

	// ErrBookUnavailable is returned when the order book cannot be fetched or
	// the side needed for pricing is empty.
	ErrBookUnavailable = errors.New("order book unavailable")

	// ErrOrderConstruction is returned when the order message cannot be built
	// or signed.
	ErrOrderConstruction = errors.New("order construction failed")

	// ErrBroadcastFailed is returned when submission did not yield a tx hash.
	ErrBroadcastFailed = errors.New("broadcast failed")
)

// IsDegradable reports whether an error should route the swap to simulation
// rather than fail the request.
func IsDegradable(err error) bool {
	return errors.Is(err, ErrMarketNotFound) ||
		errors.Is(err, ErrBookUnavailable) ||
		errors.Is(err, ErrOrderConstruction) ||
		errors.Is(err, ErrBroadcastFailed) ||
		IsRetriable(err)
}

// ValidationError rejects malformed input before any stage starts. It is
// surfaced directly to the caller and never triggers simulation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// NetworkError represents a network-related error that may be retriable
type NetworkError struct {
	Op        string // Operation that failed (e.g., "list_markets", "orderbook", "broadcast")
	Err       error  // Underlying error
	Retriable bool   // Whether this error is retriable
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) IsRetriable() bool {
	return e.Retriable
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new retriable network error
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: true}
}

// NewFatalNetworkError creates a non-retriable network error
func NewFatalNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: false}
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [%s]: %v", e.Field, e.Err)
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
