package orders

import "github.com/go-faster/errors"

var (
	ErrNotFound  = errors.New("Order not found")
	ErrForbidden = errors.New("You are not allowed to access this order")
	// ErrDuplicateSubmission means another request with the same
	// idempotency key is still being processed.
	ErrDuplicateSubmission = errors.New("Order submission already in progress")
)

// ValidationError carries a message meant for the end user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}
