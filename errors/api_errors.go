package errors

import "fmt"

// APIError is the JSON body written for every failed API request.
type APIError struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Standard API error codes
const (
	InvalidRequest = "invalid_request"
	Unauthorized   = "unauthorized"
	Forbidden      = "forbidden"
	NotFound       = "not_found"
	ServerError    = "server_error"
)

// Common error constructors
func NewInvalidRequest(description string) *APIError {
	return &APIError{
		Code:        InvalidRequest,
		Description: description,
	}
}

func NewUnauthorized(description string) *APIError {
	return &APIError{
		Code:        Unauthorized,
		Description: description,
	}
}

func NewForbidden(description string) *APIError {
	return &APIError{
		Code:        Forbidden,
		Description: description,
	}
}

func NewNotFound(description string) *APIError {
	return &APIError{
		Code:        NotFound,
		Description: description,
	}
}

func NewServerError(description string) *APIError {
	return &APIError{
		Code:        ServerError,
		Description: description,
	}
}
