package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "rentops/internal/app/outbox"
	infraoutbox "rentops/internal/infra/outbox"
)

type outboxEntry struct {
	msg       infraoutbox.Message
	state     string
	nextTry   time.Time
	lastError string
}

// Outbox holds records until the relay worker claims and sends them.
type Outbox struct {
	mu      sync.Mutex
	entries []*outboxEntry
	clock   func() time.Time
}

func NewOutbox() *Outbox {
	return &Outbox{clock: time.Now}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = append(o.entries, &outboxEntry{
		msg: infraoutbox.Message{
			ID:         record.ID,
			Name:       record.Name,
			Payload:    append([]byte(nil), record.Payload...),
			OccurredAt: record.OccurredAt,
			Aggregate:  record.Aggregate,
			Headers:    copyHeaders(record.Headers),
		},
		state:   infraoutbox.StateNew,
		nextTry: o.clock(),
	})
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.clock()
	for _, e := range o.entries {
		if (e.state == infraoutbox.StateNew || e.state == infraoutbox.StateFailed) && !e.nextTry.After(now) {
			e.state = infraoutbox.StateClaimed
			msg := e.msg
			msg.Headers = copyHeaders(e.msg.Headers)
			return &msg, nil
		}
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e := o.find(id); e != nil {
		e.state = infraoutbox.StateSent
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e := o.find(id); e != nil {
		e.state = infraoutbox.StateFailed
		e.nextTry = next
		e.lastError = errMsg
		e.msg.Attempts++
	}
	return nil
}

// Records returns every stored record with its relay state.
func (o *Outbox) Records() []OutboxRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]OutboxRecord, 0, len(o.entries))
	for _, e := range o.entries {
		out = append(out, OutboxRecord{Message: e.msg, State: e.state, LastError: e.lastError})
	}
	return out
}

type OutboxRecord struct {
	Message   infraoutbox.Message
	State     string
	LastError string
}

func (o *Outbox) find(id string) *outboxEntry {
	for _, e := range o.entries {
		if e.msg.ID == id {
			return e
		}
	}
	return nil
}

func copyHeaders(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

var (
	_ appoutbox.Outbox       = (*Outbox)(nil)
	_ infraoutbox.RelayStore = (*Outbox)(nil)
)
