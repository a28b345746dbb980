package sideeffects

import (
	"context"

	"rentops/internal/app/outbox"
	"rentops/internal/domain/shared/events"
)

// OutboxHandler stores every committed event for relay to the event bus.
type OutboxHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
}

func (OutboxHandler) Name() string { return "event-outbox" }

func (h OutboxHandler) Handle(ctx context.Context, ev events.DomainEvent) error {
	return outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, []events.DomainEvent{ev})
}
