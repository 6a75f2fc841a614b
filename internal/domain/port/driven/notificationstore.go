// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/notifyhub/internal/domain/model"
)

// Sentinel errors returned by NotificationStore implementations. Adapters wrap
// them together with the underlying driver error so callers can use errors.Is
// and still log the original cause.
var (
	// ErrNotificationNotFound indicates no row matched the requested identifier.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrStoreUnavailable indicates a connectivity problem: the pool could not
	// hand out a connection or the connection broke mid-statement.
	ErrStoreUnavailable = errors.New("notification store unavailable")

	// ErrConstraintViolation indicates the store rejected a write because it
	// violates a table constraint.
	ErrConstraintViolation = errors.New("notification violates a store constraint")
)

// NotificationStore defines the driven port for notification persistence.
// Errors that are none of the sentinels above are returned wrapped as-is.
type NotificationStore interface {
	// Insert persists every field of n except ID and returns the identifier
	// assigned by the store.
	Insert(ctx context.Context, n model.Notification) (int64, error)

	// ListAll returns every stored notification in store order.
	ListAll(ctx context.Context) ([]model.Notification, error)

	// GetByID returns the notification with the given identifier, or an error
	// wrapping ErrNotificationNotFound.
	GetByID(ctx context.Context, id int64) (*model.Notification, error)
}
