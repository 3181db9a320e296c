package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Configuration Errors.

	// ErrUnknownEnvironment indicates an environment id that is not configured.
	ErrUnknownEnvironment = errors.New("unknown environment")

	// ErrMissingConnection indicates an environment has no connection string.
	ErrMissingConnection = errors.New("missing connection string")

	// ErrNoTargetEnvironments indicates target resolution produced an empty set.
	ErrNoTargetEnvironments = errors.New("no target environments")

	// ErrSinkNotConfigured indicates the subscriber sink has no base URL or token.
	ErrSinkNotConfigured = errors.New("subscriber sink not configured")

	// Validation Errors.

	// ErrInvalidDateRange indicates the start of a range lies after its end.
	ErrInvalidDateRange = errors.New("from date must be before to date")

	// ErrMissingDateRange indicates a selector that needs a date range got none.
	ErrMissingDateRange = errors.New("date range required")

	// ErrEmptyPlateList indicates a plate lookup without any plates.
	ErrEmptyPlateList = errors.New("at least one license plate is required")

	// ErrEmptyPlate indicates a blank entry in a plate list.
	ErrEmptyPlate = errors.New("license plates cannot be empty")

	// ErrEmptyPhoneList indicates a phone lookup without any phone numbers.
	ErrEmptyPhoneList = errors.New("at least one phone number is required")

	// ErrEmptySubscriberList indicates a forwarded batch without subscribers.
	ErrEmptySubscriberList = errors.New("at least one subscriber is required")

	// ErrInvalidCustomerType indicates a customer type filter other than Private or Company.
	ErrInvalidCustomerType = errors.New("invalid customer type")

	// Scheduler Errors.

	// ErrTaskRunning indicates a task run was requested while one is in progress.
	ErrTaskRunning = errors.New("task already running")
)

// ConfigurationError reports a fatal configuration problem for an environment.
// It is surfaced immediately and never retried.
type ConfigurationError struct {
	Environment string
	Err         error
}

func (e *ConfigurationError) Error() string {
	if e.Environment == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration: environment %s: %v", e.Environment, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ValidationError reports caller input rejected before any I/O.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %v", e.Err)
	}
	return fmt.Sprintf("validation: %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// EnvironmentQueryError is a failure scoped to one environment. The aggregator
// logs it and treats the environment as having returned no orders.
type EnvironmentQueryError struct {
	Environment string
	Stage       string
	Err         error
}

func (e *EnvironmentQueryError) Error() string {
	return fmt.Sprintf("environment %s: %s: %v", e.Environment, e.Stage, e.Err)
}

func (e *EnvironmentQueryError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConfiguration reports whether err is a configuration failure.
func IsConfiguration(err error) bool {
	var c *ConfigurationError
	return errors.As(err, &c)
}
