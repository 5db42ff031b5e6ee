package apierror

import "fmt"

// APIError is a domain error that already knows the HTTP status it maps to.
// The response envelope repeats the status in its code field.
type APIError struct {
	Message    string `json:"msg"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	return fmt.Sprintf("%d: %s", e.HTTPStatus, e.Message)
}

func New(message string, status int) *APIError {
	return &APIError{Message: message, HTTPStatus: status}
}
