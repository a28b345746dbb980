package booking

import (
	"context"
	"fmt"
	"log/slog"

	domainbooking "rentops/internal/domain/booking"
	"rentops/internal/domain/shared/daterange"
)

var blockingStatuses = []domainbooking.Status{
	domainbooking.StatusOnHold,
	domainbooking.StatusConfirmed,
	domainbooking.StatusCompleted,
}

// checkConflict reads the booking records, not the ledger, and rejects r when
// a blocking booking other than exclude overlaps it.
func (l *Lifecycle) checkConflict(ctx context.Context, propertyID string, r daterange.DateRange, exclude domainbooking.BookingID) error {
	existing, err := l.Bookings.List(ctx, domainbooking.ListFilter{
		PropertyID: propertyID,
		Statuses:   blockingStatuses,
	})
	if err != nil {
		return fmt.Errorf("list bookings for conflict check: %w", err)
	}
	logger := l.logger()
	conflict := domainbooking.FindConflict(existing, propertyID, r, exclude, func(b *domainbooking.Booking, err error) {
		logger.Warn("skipping booking with malformed dates",
			slog.String("booking_id", string(b.ID)),
			slog.String("property_id", b.PropertyID),
			slog.Any("error", err))
	})
	if conflict != nil {
		return &domainbooking.ConflictError{Conflict: *conflict}
	}
	return nil
}
