package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ericfisherdev/notifyhub/internal/domain/port/driven"
)

// classifyError tags a driver error with the matching driven sentinel. Errors
// that fit no kind are returned unchanged.
func classifyError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, driven.ErrNotificationNotFound),
		errors.Is(err, driven.ErrStoreUnavailable),
		errors.Is(err, driven.ErrConstraintViolation):
		return err
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%w: %w", driven.ErrNotificationNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgerrcode.IsIntegrityConstraintViolation(pgErr.Code):
			return fmt.Errorf("%w: %w", driven.ErrConstraintViolation, err)
		case pgerrcode.IsConnectionException(pgErr.Code),
			pgerrcode.IsInsufficientResources(pgErr.Code),
			pgErr.Code == pgerrcode.AdminShutdown,
			pgErr.Code == pgerrcode.CrashShutdown,
			pgErr.Code == pgerrcode.CannotConnectNow:
			return fmt.Errorf("%w: %w", driven.ErrStoreUnavailable, err)
		}
		return err
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %w", driven.ErrStoreUnavailable, err)
	}

	return err
}
