package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentops/internal/app/dto"
	domainbooking "rentops/internal/domain/booking"
)

const holdExpiredReason = "hold expired"

var errHoldStillActive = errors.New("booking: hold is no longer expired")

// SweepExpiredHolds cancels on-hold bookings whose deadline has passed.
// Expired holds keep blocking their dates until this runs or an admin acts.
func (l *Lifecycle) SweepExpiredHolds(ctx context.Context) (dto.BulkResult, error) {
	if err := l.ready(); err != nil {
		return dto.BulkResult{}, err
	}
	if _, err := l.requireAdmin(ctx); err != nil {
		return dto.BulkResult{}, err
	}
	holds, err := l.Bookings.List(ctx, domainbooking.ListFilter{
		Statuses: []domainbooking.Status{domainbooking.StatusOnHold},
	})
	if err != nil {
		return dto.BulkResult{}, fmt.Errorf("list holds: %w", err)
	}
	now := l.now()
	var expired []string
	for _, b := range holds {
		if b.HoldExpired(now) {
			expired = append(expired, string(b.ID))
		}
	}
	if len(expired) == 0 {
		return dto.BulkResult{Succeeded: []string{}, Failures: []dto.BulkFailure{}}, nil
	}
	// re-checked per booking: a hold extended meanwhile is no longer expired
	result := l.bulkWith(ctx, expired, func(ctx context.Context, id domainbooking.BookingID) error {
		_, err := l.mutate(ctx, id, false, func(_ context.Context, b *domainbooking.Booking, now time.Time) error {
			if !b.HoldExpired(now) {
				return errHoldStillActive
			}
			return b.Apply(domainbooking.ActionCancelHold, now, holdExpiredReason)
		})
		return err
	})
	l.logger().Info("expired holds swept",
		"expired", len(expired),
		"cancelled", result.SuccessCount,
		"failed", result.FailCount)
	return result, nil
}
