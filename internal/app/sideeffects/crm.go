package sideeffects

import (
	"context"

	"rentops/internal/app/policies"
	domainbooking "rentops/internal/domain/booking"
	"rentops/internal/domain/shared/events"
)

type CRMHandler struct {
	CRM policies.GuestCRM
}

func (CRMHandler) Name() string { return "guest-crm" }

func (h CRMHandler) Handle(ctx context.Context, ev events.DomainEvent) error {
	switch e := ev.(type) {
	case domainbooking.Created:
		return h.CRM.UpsertFromBooking(ctx, e.Booking)
	case domainbooking.Cancelled:
		if e.ReversesGuestAggregate() {
			return h.CRM.ReverseBooking(ctx, e.Booking)
		}
	}
	return nil
}
