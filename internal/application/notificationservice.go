// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ericfisherdev/notifyhub/internal/domain/model"
	"github.com/ericfisherdev/notifyhub/internal/domain/port/driven"
)

// ErrInvalidNotification is returned by Create when the record fails
// validation. Nothing is written in that case.
var ErrInvalidNotification = errors.New("invalid notification")

// NotificationService is the use-case layer over the NotificationStore port.
// It depends only on port interfaces.
type NotificationService struct {
	store    driven.NotificationStore
	validate *validator.Validate
}

// NewNotificationService creates a new NotificationService backed by store.
func NewNotificationService(store driven.NotificationStore) *NotificationService {
	return &NotificationService{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Create validates n, stores it and returns it with the assigned ID. Any ID
// already set on n is ignored.
func (s *NotificationService) Create(ctx context.Context, n model.Notification) (*model.Notification, error) {
	n.ID = 0
	if err := s.validate.Struct(n); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNotification, err)
	}

	id, err := s.store.Insert(ctx, n)
	if err != nil {
		return nil, err
	}

	n.ID = id
	return &n, nil
}

// List returns every stored notification.
func (s *NotificationService) List(ctx context.Context) ([]model.Notification, error) {
	return s.store.ListAll(ctx)
}

// Get returns a single notification. A missing record yields an error
// wrapping driven.ErrNotificationNotFound.
func (s *NotificationService) Get(ctx context.Context, id int64) (*model.Notification, error) {
	return s.store.GetByID(ctx, id)
}
