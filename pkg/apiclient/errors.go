package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
)

const (
	networkErrorMessage = "Network error. Please check your connection and try again."
	genericErrorMessage = "Something went wrong. Please try again."
)

// Error is a failed API call. Status is zero when no response arrived.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthorized reports a rejected or expired session.
func (e *Error) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// Message is the text to show the user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return "Request cancelled"
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return genericErrorMessage
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}
