package serviceerr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name        string
		err         *serviceerr.Error
		expectedMsg string
	}{
		{
			name:        "Error with description",
			err:         &serviceerr.Error{Err: serviceerr.CodeNotFound, Description: "resource not found"},
			expectedMsg: "not_found: resource not found",
		},
		{
			name:        "Error without description",
			err:         &serviceerr.Error{Err: serviceerr.CodeInvalidRequest, Description: ""},
			expectedMsg: "invalid_request",
		},
		{
			name:        "Predefined error - ErrUnknown",
			err:         serviceerr.ErrUnknown,
			expectedMsg: "unknown: unknown error",
		},
		{
			name:        "Predefined error - ErrStillProcessing",
			err:         serviceerr.ErrStillProcessing,
			expectedMsg: "still_processing: currently processing, unable to proceed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedMsg, tt.err.Error())
		})
	}
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		name               string
		code               serviceerr.Code
		expectedHTTPStatus int
	}{
		{name: "Invalid request", code: serviceerr.CodeInvalidRequest, expectedHTTPStatus: http.StatusBadRequest},
		{name: "Not logged in", code: serviceerr.CodeNotLoggedIn, expectedHTTPStatus: http.StatusUnauthorized},
		{name: "Not found", code: serviceerr.CodeNotFound, expectedHTTPStatus: http.StatusNotFound},
		{name: "Still processing", code: serviceerr.CodeStillProcessing, expectedHTTPStatus: http.StatusConflict},
		{name: "Cart not ready", code: serviceerr.CodeCartNotReady, expectedHTTPStatus: http.StatusServiceUnavailable},
		{name: "Limit exceeded", code: serviceerr.CodeLimitExceeded, expectedHTTPStatus: http.StatusUnprocessableEntity},
		{name: "User error", code: serviceerr.CodeUserError, expectedHTTPStatus: http.StatusUnprocessableEntity},
		{name: "Unexpected", code: serviceerr.CodeUnexpected, expectedHTTPStatus: http.StatusBadGateway},
		{name: "Unknown", code: serviceerr.CodeUnknown, expectedHTTPStatus: http.StatusInternalServerError},
		{name: "Unmapped", code: serviceerr.Code("something"), expectedHTTPStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedHTTPStatus, tt.code.HTTPStatus())
		})
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("adding line: %w", serviceerr.ErrCartFull)
	assert.Equal(t, serviceerr.CodeCartFull, serviceerr.CodeOf(wrapped))
	assert.Equal(t, serviceerr.CodeUnknown, serviceerr.CodeOf(errors.New("plain")))
	assert.Equal(t, serviceerr.CodeUnknown, serviceerr.CodeOf(nil))
}

func TestIsLocal(t *testing.T) {
	assert.True(t, serviceerr.IsLocal(serviceerr.ErrStillProcessing))
	assert.True(t, serviceerr.IsLocal(fmt.Errorf("x: %w", serviceerr.ErrLimitExceeded)))
	assert.False(t, serviceerr.IsLocal(serviceerr.ErrUnexpected))
	assert.False(t, serviceerr.IsLocal(errors.New("network down")))
}
