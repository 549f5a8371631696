package plaid

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
)

// ErrNotConfigured is returned when Plaid credentials are not set.
var ErrNotConfigured = errors.New("plaid: provider not configured")

// APIError represents a non-200 response from the Plaid API.
type APIError struct {
	StatusCode   int
	ErrorType    string
	ErrorCode    string
	ErrorMessage string
	RequestID    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plaid API error: %s (status=%d, type=%s, code=%s, request_id=%s)",
		e.ErrorMessage, e.StatusCode, e.ErrorType, e.ErrorCode, e.RequestID)
}

// Unwrap maps the response to the application error it represents.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusTooManyRequests || e.ErrorType == "RATE_LIMIT_EXCEEDED":
		return apperrors.ErrRateLimited
	case e.ErrorType == "INVALID_INPUT" && e.ErrorCode == "INVALID_ACCESS_TOKEN":
		return apperrors.ErrUnauthorized
	case e.StatusCode == http.StatusBadRequest && e.ErrorType == "INVALID_REQUEST":
		return apperrors.ErrValidation
	default:
		return apperrors.ErrProviderUnavailable
	}
}
