package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", NewNotFoundError("Module", "m1"), http.StatusNotFound, "NOT_FOUND"},
		{"validation", NewValidationError("name", "required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"conflict", NewConflictError("Field", "fieldKey", "status"), http.StatusConflict, "CONFLICT"},
		{"invalid operation", NewInvalidOperationError("delete module", "system module"), http.StatusUnprocessableEntity, "INVALID_OPERATION"},
		{"unauthorized", NewUnauthorizedError("token expired"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"unavailable", NewUnavailableError(fmt.Errorf("dial tcp: refused")), http.StatusServiceUnavailable, "UNAVAILABLE"},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError, "UNKNOWN_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.Equal(t, tt.status, GetHTTPStatus(wrapped))
			assert.Equal(t, tt.code, GetErrorCode(wrapped))
		})
	}
}

func TestValidationErrors_Aggregates(t *testing.T) {
	var verrs ValidationErrors
	assert.NoError(t, verrs.ErrOrNil())

	verrs.Add("name", "is required")
	require.NoError(t, verrs.Append("seats", NewValidationError("", "must be a number")))
	require.NoError(t, verrs.Append("", &ValidationErrors{Errors: []*ValidationError{
		NewValidationError("status", "not an option"),
	}}))

	other := fmt.Errorf("database gone")
	assert.Equal(t, other, verrs.Append("x", other))

	err := verrs.ErrOrNil()
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Len(t, verrs.Errors, 3)
	assert.Equal(t, "seats", verrs.Errors[1].Field)
	assert.Contains(t, err.Error(), "3 errors")

	resp := ToResponse(err)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	details, ok := resp.Details.([]FieldErrorDetail)
	require.True(t, ok)
	assert.Equal(t, FieldErrorDetail{Field: "name", Message: "is required"}, details[0])
}

func TestKindHelpers(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("wrap: %w", NewNotFoundError("Record", "r1"))))
	assert.True(t, IsConflict(NewConflictError("Module", "name", "Platforms")))
	assert.True(t, IsInvalidOperation(NewInvalidOperationError("delete field", "system field")))
	assert.True(t, IsUnavailable(NewUnavailableError(nil)))
	assert.True(t, IsUnauthorized(fmt.Errorf("auth: %w", NewUnauthorizedError(""))))
	assert.Equal(t, "unauthorized: token expired", NewUnauthorizedError("token expired").Error())
	assert.False(t, IsValidation(NewNotFoundError("Module", "")))
	assert.Equal(t, "Module not found", NewNotFoundError("Module", "").Error())
}
