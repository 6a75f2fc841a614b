//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ericfisherdev/notifyhub/internal/domain/port/driven"
)

// startPostgres runs a throwaway PostgreSQL container, applies the embedded
// migrations and returns the Config pointing at it.
func startPostgres(ctx context.Context, t *testing.T) Config {
	t.Helper()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("notifications_db"),
		tcpostgres.WithUsername("local"),
		tcpostgres.WithPassword("local"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		terminateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(terminateCtx); err != nil {
			t.Logf("terminate container: %s", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	parsed, err := pgconn.ParseConfig(connStr)
	require.NoError(t, err)

	cfg := Config{
		Host:     parsed.Host,
		Port:     int(parsed.Port),
		DBName:   "notifications_db",
		User:     "local",
		Password: "local",
		SSLMode:  "disable",
	}

	db, err := OpenMigrationDB(ctx, cfg, discardLogger())
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, RunMigrations(db))
	// A second run is a no-op.
	require.NoError(t, RunMigrations(db))

	return cfg
}

func TestIntegration_NotificationRepo(t *testing.T) {
	ctx := context.Background()
	cfg := startPostgres(ctx, t)

	manager := NewPoolManager(cfg, nil, discardLogger())
	t.Cleanup(manager.Close)
	require.NoError(t, manager.EnsurePool(ctx))
	require.NoError(t, manager.Ping(ctx))

	repo := NewNotificationRepo(manager)

	empty, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	n := makeNotification()
	id, err := repo.Insert(ctx, n)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	n.ID = id
	assert.Equal(t, n, *got)

	second := makeNotification()
	second.Title = "second"
	secondID, err := repo.Insert(ctx, second)
	require.NoError(t, err)
	assert.NotEqual(t, id, secondID)

	first, err := repo.ListAll(ctx)
	require.NoError(t, err)
	again, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.ElementsMatch(t, first, again)

	_, err = repo.GetByID(ctx, secondID+1000)
	assert.ErrorIs(t, err, driven.ErrNotificationNotFound)
}

func TestIntegration_RollbackMigrations(t *testing.T) {
	ctx := context.Background()
	cfg := startPostgres(ctx, t)

	db, err := OpenMigrationDB(ctx, cfg, discardLogger())
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RollbackMigrations(db, 1))

	var exists bool
	err = db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'email_notifications')").
		Scan(&exists)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Error(t, RollbackMigrations(db, 0))
}
