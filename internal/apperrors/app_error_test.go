package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"malformed identifier", MalformedIdentifier("invalid product id"), CodeMalformedIdentifier, http.StatusBadRequest},
		{"validation", Validation("invalid category"), CodeValidation, http.StatusBadRequest},
		{"not found", NotFound("product not found"), CodeNotFound, http.StatusNotFound},
		{"storage", Storage("failed to list products", errors.New("connection reset")), CodeStorage, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
		})
	}
}

func TestAs_FindsWrappedError(t *testing.T) {
	cause := errors.New("connection reset")
	wrapped := fmt.Errorf("service: %w", Storage("failed to count products", cause))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeStorage, appErr.Code)
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "failed to count products: connection reset", appErr.Error())
}

func TestAs_PlainError(t *testing.T) {
	appErr, ok := As(errors.New("boom"))
	assert.False(t, ok)
	assert.Nil(t, appErr)
}
