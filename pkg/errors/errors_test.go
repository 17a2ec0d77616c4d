package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHTTPStatus tests the code to status mapping
func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code   ErrorCode
		status int
	}{
		{CodeValidationError, http.StatusUnprocessableEntity},
		{CodeUsernameExists, http.StatusConflict},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeUnauthenticated, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeBadRequest, http.StatusBadRequest},
		{CodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		appErr := NewAppError(tt.code, "message", nil)
		assert.Equal(t, tt.status, appErr.HTTPStatus(), string(tt.code))
	}

	// Unknown codes fall back to 500.
	unknown := &AppError{Code: ErrorCode("SOMETHING_ELSE")}
	assert.Equal(t, http.StatusInternalServerError, unknown.HTTPStatus())
}

// TestAppError_Unwrap tests cause chains
func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("dial timeout")
	appErr := NewAppError(CodeInternalError, "store unavailable", cause)

	assert.ErrorIs(t, appErr, cause)
	assert.Contains(t, appErr.Error(), "store unavailable")
	assert.Contains(t, appErr.Error(), "dial timeout")
}

// TestWrapError tests classification preservation
func TestWrapError(t *testing.T) {
	// A wrapped AppError keeps its code.
	notFound := NewAppError(CodeNotFound, "User not found", nil)
	wrapped := WrapError(notFound, "lookup failed")

	var appErr *AppError
	require.True(t, stderrors.As(wrapped, &appErr))
	assert.Equal(t, CodeNotFound, appErr.Code)

	// A plain error becomes internal.
	wrapped = WrapError(stderrors.New("boom"), "operation failed")
	require.True(t, stderrors.As(wrapped, &appErr))
	assert.Equal(t, CodeInternalError, appErr.Code)
}

// TestToErrorResponse tests the wire envelope
func TestToErrorResponse(t *testing.T) {
	appErr := NewAppError(CodeNotFound, "User not found", nil)
	resp := appErr.ToErrorResponse("trace-123")

	assert.Equal(t, CodeNotFound, resp.Error.Code)
	assert.Equal(t, "User not found", resp.Error.Message)
	assert.Equal(t, "trace-123", resp.Error.TraceID)
}
