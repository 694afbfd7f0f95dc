package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// Insert is idempotent on event_id; redelivered events are dropped.
func (r *Repo) Insert(ctx context.Context, eventID string, occurredAt time.Time, ev Event) error {
	var meta []byte
	if ev.Target.Metadata != nil {
		b, err := json.Marshal(ev.Target.Metadata)
		if err != nil {
			return err
		}
		meta = b
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO activity_log(event_id, action, actor_id, actor_role, target_type, target_id, target_name, metadata, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (event_id) DO NOTHING`,
		eventID, ev.Action, ev.ActorID, ev.ActorRole,
		ev.Target.Type, ev.Target.ID, ev.Target.Name, meta, occurredAt)
	return err
}
