package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/jackc/pgx/v5/pgconn"
)

// DefaultLockTimeout bounds how long LockKey waits for a competing holder.
const DefaultLockTimeout = 10 * time.Second

// lockNotAvailable is the SQLSTATE raised when lock_timeout expires.
const lockNotAvailable = "55P03"

// LockKey takes pg_advisory_xact_lock on key. The lock is released when the
// surrounding transaction commits or rolls back.
func (c *Client) LockKey(ctx context.Context, key string) error {
	tx := txFromContext(ctx)
	if tx == nil {
		return ierr.NewError("LockKey must be called inside a transaction").
			Mark(ierr.ErrInternal)
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", DefaultLockTimeout.Milliseconds())); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to set lock timeout").
			Mark(ierr.ErrDatabase)
	}

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		if isLockTimeoutError(err) {
			return ierr.WithError(err).
				WithHintf("Another request is already working on %s, try again shortly", key).
				Mark(ierr.ErrVersionConflict)
		}
		return ierr.WithError(err).
			WithHint("Failed to acquire lock").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func isLockTimeoutError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == lockNotAvailable
}
