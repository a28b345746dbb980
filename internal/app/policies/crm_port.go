package policies

import (
	"context"

	domainbooking "rentops/internal/domain/booking"
)

// GuestCRM keeps per-guest aggregates (total bookings, total spend, history).
type GuestCRM interface {
	UpsertFromBooking(ctx context.Context, b domainbooking.Snapshot) error
	ReverseBooking(ctx context.Context, b domainbooking.Snapshot) error
}
