package audit

import (
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/prasetyadi/marketcore/internal/kafka"
)

// Logger emits activity events after the business operation already
// committed. Best-effort only: the producer queues asynchronously and a
// lost entry never rolls back or fails the operation it describes, so Log
// deliberately has no error return.
type Logger struct {
	Producer *kafkax.Producer
	Service  string
}

func (l *Logger) Log(ev Event, traceID string) {
	if l == nil || l.Producer == nil {
		return
	}
	env := Envelope{
		EventID:      uuid.NewString(),
		EventType:    EventActivityLogged,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     l.Service,
		TraceID:      traceID,
		Payload:      kafkax.MustMarshal(ev),
	}
	l.Producer.Publish(PartitionKey(ev.Target.ID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventActivityLogged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
