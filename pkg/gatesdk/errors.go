package gatesdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes shared between the service and this SDK.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeInvalidTOTP        = "invalid_totp"
	ErrorCodeTooManyAttempts    = "too_many_attempts"
	ErrorCodeValidationError    = "validation_error"
	ErrorCodeUsernameTaken      = "username_taken"
	ErrorCodeUnauthorized       = "unauthorized"
	ErrorCodeForbidden          = "forbidden"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeResetDisabled      = "reset_disabled"
	ErrorCodeServerError        = "server_error"
)

// APIError is the typed form of the service's error envelope. It implements
// the error interface and carries the HTTP status the server responded with.
type APIError struct {
	// StatusCode is the HTTP status code the server returned
	StatusCode int `json:"-"`

	// Code is the machine-readable error code
	Code string `json:"error"`

	// Description is a human-readable description of the error. For login
	// failures this carries the attempt-warning flash message.
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Code == code
}

// parseErrorResponse turns a non-2xx response body into an *APIError. Bodies
// that are not the standard envelope still produce a usable error.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var envelope ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        envelope.Error,
			Description: envelope.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("unexpected response (HTTP %d)", resp.StatusCode),
	}
}
