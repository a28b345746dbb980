package sideeffects

import (
	"context"
	"fmt"

	domainavailability "rentops/internal/domain/availability"
	domainbooking "rentops/internal/domain/booking"
	"rentops/internal/domain/shared/events"
)

// LedgerHandler keeps the availability ledger in step with booking status.
type LedgerHandler struct {
	Ledger domainavailability.Ledger
}

func (LedgerHandler) Name() string { return "availability-ledger" }

func (h LedgerHandler) Handle(ctx context.Context, ev events.DomainEvent) error {
	switch e := ev.(type) {
	case domainbooking.Created:
		if !e.Booking.Status.Blocking() {
			return nil
		}
		return h.block(ctx, e.Booking)
	case domainbooking.DatesChanged:
		if !e.Booking.Status.Blocking() {
			return nil
		}
		if err := h.Ledger.Release(ctx, e.Booking.PropertyID, e.Previous); err != nil {
			return fmt.Errorf("release previous dates: %w", err)
		}
		return h.block(ctx, e.Booking)
	case domainbooking.Cancelled:
		if !e.ReleasesAvailability() {
			return nil
		}
		return h.Ledger.Release(ctx, e.Booking.PropertyID, e.Booking.Range)
	}
	return nil
}

func (h LedgerHandler) block(ctx context.Context, b domainbooking.Snapshot) error {
	return h.Ledger.Block(ctx, b.PropertyID, b.Range, domainavailability.BlockOptions{
		// a manually entered reservation takes over dates a feed still holds
		ClearExternalBlocks: b.Source == domainbooking.SourceManual,
		Ref:                 string(b.BookingID),
	})
}
