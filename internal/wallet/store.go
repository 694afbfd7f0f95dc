// Package wallet keeps a logical balance split across N shard rows so that
// concurrent writers do not serialize on a single hot row. Each write is one
// atomic upsert-increment against a randomly chosen shard; the aggregate is
// computed by summing shards (plus the legacy single-row balance) at read
// time. Individual increments are atomic, the aggregate read is eventually
// consistent - that trade is fine because reads are rare (dashboards) and
// writes are not.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prasetyadi/marketcore/internal/postgres"
)

var ErrIncrementFailed = errors.New("wallet increment failed")

const (
	DefaultShards = 5

	maxIncrementAttempts = 5
	incrementBackoff     = 20 * time.Millisecond
)

type Store struct {
	DB     *pgxpool.Pool
	Shards int // fixed at construction; shards are never deleted
	Pick   Picker
}

func NewStore(db *pgxpool.Pool, shards int) *Store {
	if shards <= 0 {
		shards = DefaultShards
	}
	return &Store{DB: db, Shards: shards, Pick: PickRandom}
}

func (s *Store) Credit(ctx context.Context, walletID string, amountCents int64) error {
	return s.apply(ctx, walletID, amountCents)
}

func (s *Store) Debit(ctx context.Context, walletID string, amountCents int64) error {
	return s.apply(ctx, walletID, -amountCents)
}

// apply lands amountCents on one shard. The upsert is a single statement,
// never read-modify-write, so two concurrent writers to the same shard can
// not lose an update; the shard row is created lazily on first write.
// Transient conflicts retry with doubling backoff; exhaustion surfaces as
// ErrIncrementFailed with the balance untouched.
func (s *Store) apply(ctx context.Context, walletID string, amountCents int64) error {
	shard := s.Pick(s.Shards)

	backoff := incrementBackoff
	var lastErr error
	for attempt := 1; attempt <= maxIncrementAttempts; attempt++ {
		_, err := s.DB.Exec(ctx, `
			INSERT INTO wallet_shards(wallet_id, shard, value, last_updated)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (wallet_id, shard)
			DO UPDATE SET value = wallet_shards.value + EXCLUDED.value, last_updated = now()`,
			walletID, shard, amountCents)
		if err == nil {
			return nil
		}
		if !postgres.IsRetryable(err) {
			return fmt.Errorf("wallet shard %d: %w", shard, err)
		}
		lastErr = err
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	return fmt.Errorf("%w: shard %d: %v", ErrIncrementFailed, shard, lastErr)
}

// Aggregate sums every shard plus the legacy wallets row. There is no
// cross-shard snapshot promise with respect to in-flight increments.
func (s *Store) Aggregate(ctx context.Context, walletID string) (int64, error) {
	var total int64
	err := s.DB.QueryRow(ctx, `
		SELECT COALESCE((SELECT SUM(value) FROM wallet_shards WHERE wallet_id=$1), 0)
		     + COALESCE((SELECT balance_cents FROM wallets WHERE id=$1), 0)`,
		walletID,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}
