package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/prasetyadi/marketcore/internal/kafka"
)

type fakeWriter struct {
	entries []Event
	err     error
}

func (f *fakeWriter) Insert(ctx context.Context, eventID string, occurredAt time.Time, ev Event) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, ev)
	return nil
}

type fakeDedup struct {
	seen map[string]bool
}

func newFakeDedup() *fakeDedup { return &fakeDedup{seen: map[string]bool{}} }

func (f *fakeDedup) Seen(ctx context.Context, eventID string) (bool, error) {
	return f.seen[eventID], nil
}

func (f *fakeDedup) Mark(ctx context.Context, eventID string) error {
	f.seen[eventID] = true
	return nil
}

func activityMessage(eventID string) kafkago.Message {
	env := Envelope{
		EventID:      eventID,
		EventType:    EventActivityLogged,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "test",
		Payload: kafkax.MustMarshal(Event{
			Action:    ActionOrderCreated,
			ActorID:   "cust-1",
			ActorRole: "customer",
			Target:    Target{Type: "order", ID: "order-1"},
		}),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestHandleActivity_Persists(t *testing.T) {
	w := &fakeWriter{}
	svc := &Service{Writer: w, Dedup: newFakeDedup()}

	if err := svc.HandleActivity(context.Background(), activityMessage("ev-1")); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if len(w.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(w.entries))
	}
	if w.entries[0].Action != ActionOrderCreated || w.entries[0].Target.ID != "order-1" {
		t.Errorf("wrong entry persisted: %+v", w.entries[0])
	}
}

func TestHandleActivity_DedupRedelivery(t *testing.T) {
	w := &fakeWriter{}
	svc := &Service{Writer: w, Dedup: newFakeDedup()}
	ctx := context.Background()

	if err := svc.HandleActivity(ctx, activityMessage("ev-1")); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	if err := svc.HandleActivity(ctx, activityMessage("ev-1")); err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}
	if len(w.entries) != 1 {
		t.Errorf("redelivered event written twice: %d entries", len(w.entries))
	}
}

func TestHandleActivity_IgnoresOtherTypes(t *testing.T) {
	w := &fakeWriter{}
	svc := &Service{Writer: w, Dedup: newFakeDedup()}

	env := Envelope{EventID: "ev-x", EventType: "SomethingElse"}
	m := kafkago.Message{Value: kafkax.MustMarshal(env)}
	if err := svc.HandleActivity(context.Background(), m); err != nil {
		t.Fatalf("expected nil for foreign event type, got: %v", err)
	}
	if len(w.entries) != 0 {
		t.Error("foreign event type was persisted")
	}
}

// Writer failure must propagate (no offset commit) and must not mark the
// event as seen, so the retry can succeed.
func TestHandleActivity_WriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("db down")}
	dedup := newFakeDedup()
	svc := &Service{Writer: w, Dedup: dedup}
	ctx := context.Background()

	if err := svc.HandleActivity(ctx, activityMessage("ev-1")); err == nil {
		t.Fatal("expected error from failing writer")
	}
	if dedup.seen["ev-1"] {
		t.Error("failed event marked as seen; retry would be dropped")
	}

	w.err = nil
	if err := svc.HandleActivity(ctx, activityMessage("ev-1")); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(w.entries) != 1 {
		t.Errorf("expected 1 entry after retry, got %d", len(w.entries))
	}
}
