package booking

import (
	"context"
	"fmt"
	"strings"

	"rentops/internal/app/dto"
	domainbooking "rentops/internal/domain/booking"
)

func (l *Lifecycle) GetBooking(ctx context.Context, q GetBookingQuery) (dto.Booking, error) {
	if err := l.ready(); err != nil {
		return dto.Booking{}, err
	}
	if _, err := l.requireAdmin(ctx); err != nil {
		return dto.Booking{}, err
	}
	b, err := l.load(ctx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return dto.Booking{}, err
	}
	if err := l.requirePropertyAccess(ctx, b.PropertyID); err != nil {
		return dto.Booking{}, err
	}
	return dto.MapBooking(b, l.now()), nil
}

// ListBookings returns the bookings the caller may see, newest first.
func (l *Lifecycle) ListBookings(ctx context.Context, q ListBookingsQuery) (dto.BookingCollection, error) {
	if err := l.ready(); err != nil {
		return dto.BookingCollection{}, err
	}
	principal, err := l.requireAdmin(ctx)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	filter := domainbooking.ListFilter{PropertyID: strings.TrimSpace(q.PropertyID), Limit: q.Limit}
	if filter.PropertyID != "" {
		if err := l.requirePropertyAccess(ctx, filter.PropertyID); err != nil {
			return dto.BookingCollection{}, err
		}
	}
	// Non-admins are scoped in the query so Limit counts only visible bookings.
	if !principal.IsAdmin() {
		if len(principal.Properties) == 0 {
			return dto.MapBookings(nil, l.now()), nil
		}
		filter.PropertyIDs = principal.Properties
	}
	if q.Status != "" {
		status, ok := domainbooking.ParseStatus(q.Status)
		if !ok {
			return dto.BookingCollection{}, domainbooking.Invalid("status", "unknown status "+q.Status)
		}
		filter.Statuses = []domainbooking.Status{status}
	}
	list, err := l.Bookings.List(ctx, filter)
	if err != nil {
		return dto.BookingCollection{}, fmt.Errorf("list bookings: %w", err)
	}
	return dto.MapBookings(l.Auth.FilterBookings(ctx, principal, list), l.now()), nil
}
