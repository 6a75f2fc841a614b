package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/ericfisherdev/notifyhub/internal/domain/model"
	"github.com/ericfisherdev/notifyhub/internal/domain/port/driven"
)

const notificationsTable = "email_notifications"

var notificationColumns = []string{
	"id",
	"title",
	"notification_type",
	"template",
	"email",
	"pwd",
	"smtp_server",
	"smtp_port",
	"description",
}

// Compile-time interface satisfaction check.
var _ driven.NotificationStore = (*NotificationRepo)(nil)

// NotificationRepo is the PostgreSQL implementation of the NotificationStore
// port. Writes go through the self-healing acquire; reads expect the pool to
// have been created at startup and use the strict acquire.
type NotificationRepo struct {
	pools *PoolManager
}

// NewNotificationRepo creates a NotificationRepo that leases connections from pools.
func NewNotificationRepo(pools *PoolManager) *NotificationRepo {
	return &NotificationRepo{pools: pools}
}

// notificationRow mirrors one email_notifications row for scanning.
type notificationRow struct {
	ID          int64  `db:"id"`
	Title       string `db:"title"`
	Type        int16  `db:"notification_type"`
	Template    string `db:"template"`
	Email       string `db:"email"`
	Password    string `db:"pwd"`
	SMTPServer  string `db:"smtp_server"`
	SMTPPort    int32  `db:"smtp_port"`
	Description string `db:"description"`
}

func (r notificationRow) toDomain() model.Notification {
	return model.Notification{
		ID:          r.ID,
		Title:       r.Title,
		Type:        model.NotificationType(r.Type),
		Template:    r.Template,
		Email:       r.Email,
		Password:    r.Password,
		SMTPServer:  r.SMTPServer,
		SMTPPort:    int(r.SMTPPort),
		Description: r.Description,
	}
}

func selectNotificationsBuilder() squirrel.SelectBuilder {
	return squirrel.
		Select(notificationColumns...).
		From(notificationsTable).
		PlaceholderFormat(squirrel.Dollar)
}

func insertNotificationBuilder(n model.Notification) squirrel.InsertBuilder {
	return squirrel.
		Insert(notificationsTable).
		Columns(notificationColumns[1:]...).
		Values(
			n.Title,
			int16(n.Type),
			n.Template,
			n.Email,
			n.Password,
			n.SMTPServer,
			int32(n.SMTPPort),
			n.Description,
		).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)
}

// Insert stores n and returns the identifier assigned by the database. n.ID
// is ignored.
func (r *NotificationRepo) Insert(ctx context.Context, n model.Notification) (int64, error) {
	query, args, err := insertNotificationBuilder(n).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build notification insert: %w", err)
	}

	conn, err := r.pools.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}
	defer conn.Release()

	var id int64
	if err := conn.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert notification: %w", classifyError(err))
	}

	return id, nil
}

// ListAll returns every notification. No ordering is applied, so the order is
// whatever the database returns.
func (r *NotificationRepo) ListAll(ctx context.Context) ([]model.Notification, error) {
	query, args, err := selectNotificationsBuilder().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build notification select: %w", err)
	}

	conn, err := r.pools.AcquireExisting(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer conn.Release()

	var rows []notificationRow
	if err := pgxscan.Select(ctx, conn, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", classifyError(err))
	}

	notifications := make([]model.Notification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, row.toDomain())
	}
	return notifications, nil
}

// GetByID returns the notification with the given identifier. The lookup is a
// single statement with id bound to its only placeholder.
func (r *NotificationRepo) GetByID(ctx context.Context, id int64) (*model.Notification, error) {
	query, args, err := selectNotificationsBuilder().
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build notification select: %w", err)
	}

	conn, err := r.pools.AcquireExisting(ctx)
	if err != nil {
		return nil, fmt.Errorf("get notification %d: %w", id, err)
	}
	defer conn.Release()

	var row notificationRow
	if err := pgxscan.Get(ctx, conn, &row, query, args...); err != nil {
		return nil, fmt.Errorf("get notification %d: %w", id, classifyError(err))
	}

	n := row.toDomain()
	return &n, nil
}
