package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/IBM/sarama"

	availabilityapp "rentops/internal/app/handlers/availability"
	domainbooking "rentops/internal/domain/booking"
)

// FeedApplier is the availability service's feed entry point.
type FeedApplier interface {
	ApplyFeedEvent(ctx context.Context, ev availabilityapp.FeedEvent) error
}

// FeedHandler decodes calendar feed messages and applies them to the ledger.
// Malformed messages are dropped, not retried.
type FeedHandler struct {
	Feed   FeedApplier
	Logger *slog.Logger
}

func (h FeedHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev availabilityapp.FeedEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		h.logger().Warn("dropping undecodable feed message", "offset", msg.Offset, "error", err)
		return nil
	}
	if ev.EventID == "" {
		ev.EventID = headerValue(msg, "ce_id")
	}
	err := h.Feed.ApplyFeedEvent(ctx, ev)
	if errors.Is(err, domainbooking.ErrValidation) {
		h.logger().Warn("dropping invalid feed event", "event_id", ev.EventID, "error", err)
		return nil
	}
	return err
}

func (h FeedHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func headerValue(msg *sarama.ConsumerMessage, key string) string {
	for _, hdr := range msg.Headers {
		if hdr != nil && string(hdr.Key) == key {
			return string(hdr.Value)
		}
	}
	return ""
}
