package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Creation(t *testing.T) {
	err := NewValidationError("validation failed",
		ValidationDetail{Field: "rating", Message: "must be between 1 and 5"},
		ValidationDetail{Field: "reason", Message: "required field"},
	)

	assert.Equal(t, "validation failed", err.Error())
	assert.Len(t, err.Details, 2)
}

func TestConflictError_NamesStates(t *testing.T) {
	err := NewConflictError("completed", "assign")

	assert.Equal(t, "completed", err.Current)
	assert.Equal(t, "assign", err.Attempted)
	assert.Contains(t, err.Error(), "completed")
	assert.Contains(t, err.Error(), "assign")
}

func TestIsConflictError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("transition: %w", NewConflictError("cancelled", "pause"))

	ce, ok := IsConflictError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "cancelled", ce.Current)

	_, ok = IsConflictError(errors.New("other"))
	assert.False(t, ok)
}

func TestUpstreamError_Unwrap(t *testing.T) {
	cause := errors.New("deadline exceeded")
	err := NewUpstreamError("failed to load service order", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "deadline exceeded")
	assert.Equal(t, "no cause", NewUpstreamError("no cause", nil).Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NewValidationError("bad"), http.StatusBadRequest},
		{NewAuthError("no token"), http.StatusUnauthorized},
		{NewForbiddenError("admins only"), http.StatusForbidden},
		{NewNotFoundError("missing"), http.StatusNotFound},
		{NewConflictError("open", "confirm"), http.StatusConflict},
		{NewUpstreamError("firestore", nil), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("ctx: %w", NewNotFoundError("missing")), http.StatusNotFound},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestPublicMessage_HidesUpstreamDetail(t *testing.T) {
	assert.Equal(t, "internal server error", PublicMessage(NewUpstreamError("firestore", errors.New("secret dsn"))))
	assert.Equal(t, "missing", PublicMessage(NewNotFoundError("missing")))
}
