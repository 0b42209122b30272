// Package idempotency remembers order submissions by client supplied key so
// a retried checkout replays the first result instead of creating a second
// order.
package idempotency

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrInFlight is returned by Reserve while the first request holding the key
// has not finished yet.
var ErrInFlight = errors.New("request with this idempotency key is in progress")

// Store tracks keys through reserve → complete (or release on failure).
type Store interface {
	// Reserve claims key for scope. It returns "" when the caller now owns the
	// key, or the result recorded by an earlier completed request.
	Reserve(ctx context.Context, scope, key string) (string, error)
	Complete(ctx context.Context, scope, key, result string) error
	Release(ctx context.Context, scope, key string) error
}
