package sideeffects

import (
	"context"
	"errors"
	"time"

	"rentops/internal/app/policies"
	domainbooking "rentops/internal/domain/booking"
	"rentops/internal/domain/shared/events"
)

// CalendarSyncHandler mirrors block and release state to channel managers.
type CalendarSyncHandler struct {
	Sync policies.CalendarSync
}

func (CalendarSyncHandler) Name() string { return "calendar-sync" }

func (h CalendarSyncHandler) Handle(ctx context.Context, ev events.DomainEvent) error {
	switch e := ev.(type) {
	case domainbooking.Created:
		if !e.Booking.Status.Blocking() {
			return nil
		}
		return h.Sync.Push(ctx, blocked(e.Booking, e.At))
	case domainbooking.HoldConverted:
		// firm booking replaces the soft hold upstream
		return h.Sync.Push(ctx, blocked(e.Booking, e.At))
	case domainbooking.DatesChanged:
		if !e.Booking.Status.Blocking() {
			return nil
		}
		release := policies.CalendarUpdate{
			PropertyID: e.Booking.PropertyID,
			BookingID:  string(e.Booking.BookingID),
			Range:      e.Previous,
			At:         e.At,
		}
		return errors.Join(h.Sync.Push(ctx, release), h.Sync.Push(ctx, blocked(e.Booking, e.At)))
	case domainbooking.Cancelled:
		if !e.ReleasesAvailability() {
			return nil
		}
		return h.Sync.Push(ctx, policies.CalendarUpdate{
			PropertyID: e.Booking.PropertyID,
			BookingID:  string(e.Booking.BookingID),
			Range:      e.Booking.Range,
			At:         e.At,
		})
	}
	return nil
}

func blocked(b domainbooking.Snapshot, at time.Time) policies.CalendarUpdate {
	return policies.CalendarUpdate{
		PropertyID: b.PropertyID,
		BookingID:  string(b.BookingID),
		Range:      b.Range,
		Blocked:    true,
		Firm:       b.Status != domainbooking.StatusOnHold,
		At:         at,
	}
}
