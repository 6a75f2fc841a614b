// Package postgres implements the NotificationStore port on PostgreSQL using
// pgx connection pools that are created lazily and rebuilt after a failed
// checkout.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/notifyhub/internal/domain/port/driven"
	"github.com/ericfisherdev/notifyhub/internal/metrics"
)

var (
	// ErrPoolConstruction wraps a PoolFactory failure. It signals a
	// misconfigured store and is never retried by the manager.
	ErrPoolConstruction = errors.New("build connection pool")

	// ErrPoolNotInitialized is returned by AcquireExisting when no caller has
	// created the pool yet.
	ErrPoolNotInitialized = errors.New("connection pool not initialized")

	// ErrPoolClosed is returned by every acquire after Close.
	ErrPoolClosed = errors.New("connection pool closed")
)

// Compile-time interface satisfaction check.
var _ driven.StoreHealth = (*PoolManager)(nil)

// PoolManager owns the lazily created connection pool shared by every
// repository in the process. The pool slot is guarded by mu; the pool itself
// is safe for concurrent use once published.
type PoolManager struct {
	cfg     Config
	factory PoolFactory
	logger  *slog.Logger

	mu     sync.Mutex
	pool   Pool
	closed bool
}

// NewPoolManager creates a manager with no pool. A nil factory selects
// NewPgxPool.
func NewPoolManager(cfg Config, factory PoolFactory, logger *slog.Logger) *PoolManager {
	if factory == nil {
		factory = NewPgxPool
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PoolManager{
		cfg:     cfg,
		factory: factory,
		logger:  logger,
	}
}

// EnsurePool builds and stores the pool if none exists yet.
func (m *PoolManager) EnsurePool(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.ensureLocked(ctx)
	return err
}

// Acquire checks out a connection, creating the pool on first use. When the
// checkout fails it rebuilds the pool once and retries on the new pool; a
// second failure is returned wrapped in driven.ErrStoreUnavailable.
func (m *PoolManager) Acquire(ctx context.Context) (Conn, error) {
	m.mu.Lock()
	pool, err := m.ensureLocked(ctx)
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err == nil {
		return conn, nil
	}
	metrics.PoolAcquireFailures.WithLabelValues(metrics.AcquireModeHealing).Inc()

	// A cancelled caller says nothing about the health of the pool.
	if ctx.Err() != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	m.logger.Warn("connection checkout failed, recreating pool", "error", err)

	fresh, err := m.replace(ctx, pool)
	if err != nil {
		return nil, err
	}

	conn, err = fresh.Acquire(ctx)
	if err != nil {
		metrics.PoolAcquireFailures.WithLabelValues(metrics.AcquireModeHealing).Inc()
		m.logger.Error("connection checkout failed on recreated pool", "error", err)
		return nil, fmt.Errorf("acquire connection after pool recreation: %w: %w", driven.ErrStoreUnavailable, err)
	}
	return conn, nil
}

// AcquireExisting checks out a connection from the current pool without
// creating or replacing it.
func (m *PoolManager) AcquireExisting(ctx context.Context) (Conn, error) {
	m.mu.Lock()
	pool, closed := m.pool, m.closed
	m.mu.Unlock()

	if closed {
		return nil, ErrPoolClosed
	}
	if pool == nil {
		return nil, ErrPoolNotInitialized
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		metrics.PoolAcquireFailures.WithLabelValues(metrics.AcquireModeStrict).Inc()
		return nil, fmt.Errorf("acquire connection: %w: %w", driven.ErrStoreUnavailable, err)
	}
	return conn, nil
}

// Ping checks out a connection through the self-healing path and performs a
// round trip on it.
func (m *PoolManager) Ping(ctx context.Context) error {
	conn, err := m.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", classifyError(err))
	}
	return nil
}

// Close closes the current pool. It is safe to call more than once.
func (m *PoolManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	if m.pool != nil {
		m.pool.Close()
		m.pool = nil
	}
}

func (m *PoolManager) ensureLocked(ctx context.Context) (Pool, error) {
	if m.closed {
		return nil, ErrPoolClosed
	}
	if m.pool != nil {
		return m.pool, nil
	}

	pool, err := m.build(ctx, metrics.PoolReasonInitial)
	if err != nil {
		return nil, err
	}
	m.pool = pool
	return pool, nil
}

// replace swaps out failed for a new pool. If another caller already replaced
// it, the pool they stored is returned and nothing is built.
func (m *PoolManager) replace(ctx context.Context, failed Pool) (Pool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrPoolClosed
	}
	if m.pool != nil && m.pool != failed {
		return m.pool, nil
	}

	fresh, err := m.build(ctx, metrics.PoolReasonRecreate)
	if err != nil {
		return nil, err
	}
	m.pool = fresh

	// Close waits for leased connections to come back; do not hold callers on it.
	go failed.Close()

	return fresh, nil
}

func (m *PoolManager) build(ctx context.Context, reason string) (Pool, error) {
	pool, err := m.factory(ctx, m.cfg)
	if err != nil {
		m.logger.Error("connection pool construction failed",
			"reason", reason,
			"host", m.cfg.Host,
			"port", m.cfg.Port,
			"db_name", m.cfg.DBName,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", ErrPoolConstruction, err)
	}

	metrics.PoolsCreated.WithLabelValues(reason).Inc()
	m.logger.Info("connection pool created",
		"reason", reason,
		"host", m.cfg.Host,
		"port", m.cfg.Port,
		"db_name", m.cfg.DBName,
	)
	return pool, nil
}
