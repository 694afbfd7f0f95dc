package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/prasetyadi/marketcore/internal/postgres"
)

// UpdateStatus moves an order to the next status and appends exactly one
// history entry, atomically per order. The order row is locked so two
// concurrent setters cannot both read the same current status and race the
// transition check; history rows are insert-only and never rewritten.
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, next Status) error {
	if !IsValid(next) {
		return &InvalidTransitionError{To: next}
	}

	return postgres.WithTx(ctx, r.DB, func(tx pgx.Tx) error {
		var current Status
		err := tx.QueryRow(ctx, `
			SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID,
		).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		if !CanTransition(current, next) {
			return &InvalidTransitionError{From: current, To: next}
		}

		if _, err := tx.Exec(ctx, `
			UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`,
			orderID, next); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_status_history(order_id, status) VALUES ($1, $2)`,
			orderID, next); err != nil {
			return err
		}
		return nil
	})
}
