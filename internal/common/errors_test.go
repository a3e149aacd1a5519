package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewAppError("CONFIG_ERROR", "model path missing", nil)
	assert.Equal(t, "CONFIG_ERROR: model path missing", err.Error())

	withCause := NewAppError("INPUT_ERROR", "document empty", ErrInvalidInput)
	assert.Contains(t, withCause.Error(), "INPUT_ERROR")
	assert.Contains(t, withCause.Error(), "invalid input")
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NewAppError("INPUT_ERROR", "document empty", ErrInvalidInput)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	var appErr *AppError
	require.True(t, errors.As(error(err), &appErr))
	assert.Equal(t, "INPUT_ERROR", appErr.Code)
}

func TestWrapError(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := WrapError(ErrExternalService, cause)
	assert.True(t, errors.Is(err, ErrExternalService))
	assert.Contains(t, err.Error(), "connection refused")

	assert.NoError(t, WrapError(ErrExternalService, nil))
}
