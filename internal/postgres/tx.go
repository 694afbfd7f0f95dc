package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrTxConflict: retry budget habis, caller harus ulang operasinya dari awal.
var ErrTxConflict = errors.New("transaction conflict: retries exhausted")

const (
	maxTxAttempts  = 5
	initialBackoff = 20 * time.Millisecond
)

// WithTx runs fn inside a transaction and retries the whole thing on
// serialization failures / deadlocks (SQLSTATE 40001, 40P01). Backoff
// doubles per attempt. Non-retryable errors pass through unchanged.
func WithTx(ctx context.Context, db *pgxpool.Pool, fn func(pgx.Tx) error) error {
	backoff := initialBackoff
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err := runTx(ctx, db, fn)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt == maxTxAttempts {
			return ErrTxConflict
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	return ErrTxConflict
}

func runTx(ctx context.Context, db *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
