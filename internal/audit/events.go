package audit

import (
	"encoding/json"
	"time"
)

const TopicActivity = "activity.log"

const EventActivityLogged = "ActivityLogged"

const (
	ActionOrderCreated   = "order.created"
	ActionStatusChanged  = "order.status_changed"
	ActionWalletCredited = "wallet.credited"
	ActionWalletDebited  = "wallet.debited"
)

// Partition key = target id, so entries for one order/wallet keep their order.
func PartitionKey(targetID string) []byte { return []byte(targetID) }

type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	TraceID      string          `json:"trace_id,omitempty"`
	Payload      json.RawMessage `json:"payload"`
}

type Target struct {
	Type     string         `json:"type"`
	ID       string         `json:"id"`
	Name     string         `json:"name,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type Event struct {
	Action    string `json:"action"`
	ActorID   string `json:"actor_id"`
	ActorRole string `json:"actor_role"`
	Target    Target `json:"target"`
}
