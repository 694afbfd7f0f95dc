package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/prasetyadi/marketcore/internal/redisx"
)

type EntryWriter interface {
	Insert(ctx context.Context, eventID string, occurredAt time.Time, ev Event) error
}

type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

// Service consumes activity envelopes and persists them. Runs behind the
// Kafka consumer group in cmd/auditlog.
type Service struct {
	Writer EntryWriter
	Dedup  Deduper
}

// HandleActivity is the consumer handler. Returning nil commits the offset.
func (s *Service) HandleActivity(ctx context.Context, m kafkago.Message) error {
	var env Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != EventActivityLogged {
		return nil // ignore
	}

	// at-least-once delivery; dedup by event_id
	if seen, _ := s.Dedup.Seen(ctx, env.EventID); seen {
		return nil
	}

	var ev Event
	if err := json.Unmarshal(env.Payload, &ev); err != nil {
		return err
	}

	if err := s.Writer.Insert(ctx, env.EventID, env.OccurredAt, ev); err != nil {
		return err
	}
	_ = s.Dedup.Mark(ctx, env.EventID)
	return nil
}

// RedisDedup backs Deduper with TTL'd keys.
type RedisDedup struct {
	Client  *redis.Client
	Service string
}

func (d *RedisDedup) Seen(ctx context.Context, eventID string) (bool, error) {
	key := fmt.Sprintf(redisx.KeyDedup, d.Service, eventID)
	return redisx.Exists(ctx, d.Client, key)
}

func (d *RedisDedup) Mark(ctx context.Context, eventID string) error {
	key := fmt.Sprintf(redisx.KeyDedup, d.Service, eventID)
	return d.Client.Set(ctx, key, "1", redisx.TTLDedup).Err()
}
