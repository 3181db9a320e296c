package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnknownEnvironment", ErrUnknownEnvironment},
		{"ErrMissingConnection", ErrMissingConnection},
		{"ErrNoTargetEnvironments", ErrNoTargetEnvironments},
		{"ErrSinkNotConfigured", ErrSinkNotConfigured},
		{"ErrInvalidDateRange", ErrInvalidDateRange},
		{"ErrMissingDateRange", ErrMissingDateRange},
		{"ErrEmptyPlateList", ErrEmptyPlateList},
		{"ErrEmptyPlate", ErrEmptyPlate},
		{"ErrEmptyPhoneList", ErrEmptyPhoneList},
		{"ErrInvalidCustomerType", ErrInvalidCustomerType},
		{"ErrTaskRunning", ErrTaskRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestConfigurationError(t *testing.T) {
	err := &ConfigurationError{Environment: "NIEM9", Err: ErrUnknownEnvironment}

	assert.Equal(t, "configuration: environment NIEM9: unknown environment", err.Error())
	assert.ErrorIs(t, err, ErrUnknownEnvironment)
	assert.True(t, IsConfiguration(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsValidation(err))
}

func TestConfigurationError_NoEnvironment(t *testing.T) {
	err := &ConfigurationError{Err: ErrNoTargetEnvironments}
	assert.Equal(t, "configuration: no target environments", err.Error())
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "from", Err: ErrInvalidDateRange}

	assert.Equal(t, "validation: from: from date must be before to date", err.Error())
	assert.ErrorIs(t, err, ErrInvalidDateRange)
	assert.True(t, IsValidation(err))
	assert.False(t, IsConfiguration(err))
}

func TestEnvironmentQueryError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &EnvironmentQueryError{Environment: "NIEM3", Stage: "order headers", Err: cause}

	assert.Equal(t, "environment NIEM3: order headers: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}
