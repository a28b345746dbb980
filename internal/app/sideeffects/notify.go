package sideeffects

import (
	"context"

	"rentops/internal/app/policies"
	domainbooking "rentops/internal/domain/booking"
	"rentops/internal/domain/shared/events"
)

type NotificationHandler struct {
	Notifier policies.Notifier
}

func (NotificationHandler) Name() string { return "notifications" }

func (h NotificationHandler) Handle(ctx context.Context, ev events.DomainEvent) error {
	switch e := ev.(type) {
	case domainbooking.Created:
		return h.Notifier.BookingChanged(ctx, policies.Notification{
			Kind:    policies.NotificationNew,
			Booking: e.Booking,
			At:      e.At,
		})
	case domainbooking.Cancelled:
		return h.Notifier.BookingChanged(ctx, policies.Notification{
			Kind:    policies.NotificationCancelled,
			Booking: e.Booking,
			Reason:  e.Reason,
			At:      e.At,
		})
	}
	return nil
}
