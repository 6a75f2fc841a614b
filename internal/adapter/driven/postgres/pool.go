package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultMaxConns          = 10
	defaultConnectTimeout    = 5 * time.Second
	defaultHealthCheckPeriod = 30 * time.Second
)

// Conn is a logical connection leased from a Pool. Release hands it back.
type Conn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Release()
}

// Pool hands out Conns and owns the physical connections behind them.
// Implementations must be safe for concurrent use.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
	Close()
}

// PoolFactory builds a new Pool from cfg. PoolManager calls it once on first
// use and once per recovery from a failed checkout.
type PoolFactory func(ctx context.Context, cfg Config) (Pool, error)

// pgxPool adapts *pgxpool.Pool to Pool.
type pgxPool struct {
	pool *pgxpool.Pool
}

func (p *pgxPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (p *pgxPool) Close() {
	p.pool.Close()
}

// NewPgxPool is the production PoolFactory. pgxpool connects lazily, so an
// error here means the configuration itself is unusable.
func NewPgxPool(ctx context.Context, cfg Config) (Pool, error) {
	poolCfg, err := buildPoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}
	return &pgxPool{pool: pool}, nil
}

func buildPoolConfig(cfg Config) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	poolCfg.MaxConns = defaultMaxConns
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.HealthCheckPeriod = defaultHealthCheckPeriod
	if cfg.HealthCheckPeriod > 0 {
		poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	poolCfg.ConnConfig.ConnectTimeout = defaultConnectTimeout
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	return poolCfg, nil
}
