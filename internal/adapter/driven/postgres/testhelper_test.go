package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errFakeQuery = errors.New("fakeConn does not run queries")

// fakeConn is a Conn that answers Ping with pingErr and rejects queries.
type fakeConn struct {
	pingErr  error
	released atomic.Bool
}

func (c *fakeConn) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errFakeQuery
}

func (c *fakeConn) QueryRow(context.Context, string, ...any) pgx.Row {
	return errRow{}
}

func (c *fakeConn) Ping(context.Context) error { return c.pingErr }
func (c *fakeConn) Release()                   { c.released.Store(true) }

type errRow struct{}

func (errRow) Scan(...any) error { return errFakeQuery }

// fakePool hands out conn (or a fresh fakeConn) unless acquireErr is set.
type fakePool struct {
	acquireErr error
	conn       Conn

	acquires atomic.Int32
	closed   atomic.Bool
}

func (p *fakePool) Acquire(context.Context) (Conn, error) {
	p.acquires.Add(1)
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	if p.conn != nil {
		return p.conn, nil
	}
	return &fakeConn{}, nil
}

func (p *fakePool) Close() { p.closed.Store(true) }

// fakeFactory returns the queued pools in order, then healthy pools. delay
// widens race windows in concurrency tests.
type fakeFactory struct {
	mu      sync.Mutex
	queue   []*fakePool
	built   []*fakePool
	err     error
	delay   time.Duration
	calls   atomic.Int32
	lastCfg Config
}

func (f *fakeFactory) build(_ context.Context, cfg Config) (Pool, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastCfg = cfg
	if f.err != nil {
		return nil, f.err
	}

	pool := &fakePool{}
	if len(f.queue) > 0 {
		pool = f.queue[0]
		f.queue = f.queue[1:]
	}
	f.built = append(f.built, pool)
	return pool, nil
}

// mockConn adapts a pgxmock connection to Conn.
type mockConn struct {
	pgxmock.PgxConnIface
}

func (mockConn) Release() {}

// setupMockRepo returns a NotificationRepo whose warmed pool always hands out
// the same pgxmock connection.
func setupMockRepo(t *testing.T) (*NotificationRepo, pgxmock.PgxConnIface) {
	t.Helper()

	mock, err := pgxmock.NewConn()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mock.Close(context.Background()) })

	pool := &fakePool{conn: mockConn{mock}}
	factory := func(context.Context, Config) (Pool, error) { return pool, nil }

	manager := NewPoolManager(Config{}, factory, discardLogger())
	require.NoError(t, manager.EnsurePool(context.Background()))

	return NewNotificationRepo(manager), mock
}
