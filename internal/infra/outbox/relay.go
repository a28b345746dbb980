package outbox

import (
	"context"
	"time"
)

const (
	StateNew     = "NEW"
	StateClaimed = "CLAIMED"
	StateSent    = "SENT"
	StateFailed  = "FAILED"
)

// Message is a claimed outbox record.
type Message struct {
	ID         string            `bson:"_id"`
	Name       string            `bson:"name"`
	Payload    []byte            `bson:"payload"`
	OccurredAt time.Time         `bson:"occurred_at"`
	Aggregate  string            `bson:"aggregate"`
	Headers    map[string]string `bson:"headers"`
	Attempts   int               `bson:"attempts"`
}

// RelayStore is the worker's view of an outbox.
type RelayStore interface {
	Claim(ctx context.Context, workerID string) (*Message, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}
