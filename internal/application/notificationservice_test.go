package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/notifyhub/internal/domain/model"
	"github.com/ericfisherdev/notifyhub/internal/domain/port/driven"
)

// mockNotificationStore is an in-memory NotificationStore.
type mockNotificationStore struct {
	mu        sync.Mutex
	rows      []model.Notification
	nextID    int64
	insertErr error
	listErr   error
	inserts   int
}

func (m *mockNotificationStore) Insert(_ context.Context, n model.Notification) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.nextID++
	n.ID = m.nextID
	m.rows = append(m.rows, n)
	return n.ID, nil
}

func (m *mockNotificationStore) ListAll(_ context.Context) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]model.Notification, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *mockNotificationStore) GetByID(_ context.Context, id int64) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.rows {
		if n.ID == id {
			return &n, nil
		}
	}
	return nil, fmt.Errorf("get notification %d: %w", id, driven.ErrNotificationNotFound)
}

func validNotification() model.Notification {
	return model.Notification{
		Title:       "t",
		Type:        1,
		Template:    "tpl",
		Email:       "a@b.com",
		Password:    "pwd",
		SMTPServer:  "h",
		SMTPPort:    80,
		Description: "d",
	}
}

func TestNotificationService_Create(t *testing.T) {
	store := &mockNotificationStore{}
	svc := NewNotificationService(store)

	in := validNotification()
	in.ID = 42

	got, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.True(t, got.IsPersisted())
	assert.Equal(t, "t", got.Title)
	assert.Equal(t, model.NotificationType(1), got.Type)

	stored, err := svc.Get(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Equal(t, *got, *stored)
}

func TestNotificationService_Create_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(n *model.Notification)
	}{
		{name: "missing title", mutate: func(n *model.Notification) { n.Title = "" }},
		{name: "bad email", mutate: func(n *model.Notification) { n.Email = "not-an-email" }},
		{name: "missing smtp server", mutate: func(n *model.Notification) { n.SMTPServer = "" }},
		{name: "port zero", mutate: func(n *model.Notification) { n.SMTPPort = 0 }},
		{name: "port too large", mutate: func(n *model.Notification) { n.SMTPPort = 70000 }},
		{name: "negative type", mutate: func(n *model.Notification) { n.Type = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockNotificationStore{}
			svc := NewNotificationService(store)

			n := validNotification()
			tt.mutate(&n)

			_, err := svc.Create(context.Background(), n)
			assert.ErrorIs(t, err, ErrInvalidNotification)
			assert.Equal(t, 0, store.inserts)
		})
	}
}

func TestNotificationService_Create_StoreError(t *testing.T) {
	storeErr := fmt.Errorf("insert notification: %w", driven.ErrStoreUnavailable)
	svc := NewNotificationService(&mockNotificationStore{insertErr: storeErr})

	_, err := svc.Create(context.Background(), validNotification())
	assert.ErrorIs(t, err, driven.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidNotification)
}

func TestNotificationService_List(t *testing.T) {
	store := &mockNotificationStore{}
	svc := NewNotificationService(store)
	ctx := context.Background()

	empty, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = svc.Create(ctx, validNotification())
	require.NoError(t, err)
	_, err = svc.Create(ctx, validNotification())
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestNotificationService_List_Error(t *testing.T) {
	listErr := errors.New("boom")
	svc := NewNotificationService(&mockNotificationStore{listErr: listErr})

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, listErr)
}

func TestNotificationService_Get_NotFound(t *testing.T) {
	svc := NewNotificationService(&mockNotificationStore{})

	got, err := svc.Get(context.Background(), 9)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, driven.ErrNotificationNotFound)
}
