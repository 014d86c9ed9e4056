package errors_test

import (
	"fmt"
	"testing"

	"github.com/lexigo/reviewd/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *errors.AppError
		code   string
		status int
	}{
		{"not found", errors.NewNotFoundError("exercise", "abc"), errors.ErrCodeNotFound, 404},
		{"validation", errors.NewValidationError("quality", "must be 0, 3 or 5"), errors.ErrCodeValidation, 400},
		{"bad request", errors.NewBadRequestError("invalid body"), errors.ErrCodeBadRequest, 400},
		{"conflict", errors.NewConflictError("already submitted"), errors.ErrCodeConflict, 409},
		{"dependency", errors.NewDependencyError("evaluator", fmt.Errorf("timeout")), errors.ErrCodeDependency, 503},
		{"unauthorized", errors.NewUnauthorizedError("missing token"), errors.ErrCodeUnauthorized, 401},
		{"internal", errors.NewInternalError(fmt.Errorf("boom")), errors.ErrCodeInternal, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestAs_UnwrapsChain(t *testing.T) {
	inner := errors.NewConflictError("already checked in")
	wrapped := fmt.Errorf("check-in: %w", inner)

	got, ok := errors.As(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, got)
	assert.True(t, errors.HasCode(wrapped, errors.ErrCodeConflict))
	assert.False(t, errors.HasCode(fmt.Errorf("plain"), errors.ErrCodeConflict))
}

func TestRetryable(t *testing.T) {
	assert.True(t, errors.NewDependencyError("evaluator", nil).Retryable())
	assert.False(t, errors.NewConflictError("dup").Retryable())
}

func TestError_IncludesWrapped(t *testing.T) {
	err := errors.NewInternalError(fmt.Errorf("disk full"))
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), errors.ErrCodeInternal)
}
