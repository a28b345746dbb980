package availability

import (
	"context"
	"fmt"
	"time"

	"rentops/internal/app/dto"
	domainavailability "rentops/internal/domain/availability"
	domainbooking "rentops/internal/domain/booking"
	"rentops/internal/domain/shared/daterange"
)

const reconcileKey = "availability.reconcile"

type ReconcileCommand struct {
	PropertyID string `validate:"required"`
}

func (ReconcileCommand) Key() string { return reconcileKey }

// Reconcile rebuilds the reservation cells of a property from the booking
// records, which stay authoritative. It repairs releases and blocks that were
// lost when a post-commit ledger update failed. External cells are kept.
func (s *Service) Reconcile(ctx context.Context, cmd ReconcileCommand) (dto.ReconcileResult, error) {
	if err := s.ready(); err != nil {
		return dto.ReconcileResult{}, err
	}
	if s.Bookings == nil {
		return dto.ReconcileResult{}, ErrNotConfigured
	}
	if err := s.requirePropertyAccess(ctx, cmd.PropertyID); err != nil {
		return dto.ReconcileResult{}, err
	}
	result, err := s.reconcile(ctx, cmd.PropertyID)
	if err != nil {
		return dto.ReconcileResult{}, err
	}
	if result.Blocked > 0 || result.Released > 0 {
		s.logger().Warn("availability ledger drift repaired",
			"property_id", cmd.PropertyID,
			"blocked_days", result.Blocked,
			"released_days", result.Released)
		s.publish(ctx, domainavailability.Reconciled{
			PropertyID: cmd.PropertyID,
			Blocked:    result.Blocked,
			Released:   result.Released,
			At:         s.now(),
		})
	}
	return result, nil
}

func (s *Service) reconcile(ctx context.Context, propertyID string) (dto.ReconcileResult, error) {
	result := dto.ReconcileResult{PropertyID: propertyID}
	owners, err := s.Bookings.List(ctx, domainbooking.ListFilter{
		PropertyID: propertyID,
		Statuses:   []domainbooking.Status{domainbooking.StatusOnHold, domainbooking.StatusConfirmed, domainbooking.StatusCompleted},
	})
	if err != nil {
		return result, fmt.Errorf("list blocking bookings: %w", err)
	}
	cells, err := s.Ledger.All(ctx, propertyID)
	if err != nil {
		return result, fmt.Errorf("read ledger: %w", err)
	}

	wanted := make(map[time.Time]struct{})
	var valid []*domainbooking.Booking
	for _, b := range owners {
		if err := b.Range.Validate(); err != nil {
			s.logger().Warn("skipping booking with malformed dates", "booking_id", b.ID, "error", err)
			continue
		}
		valid = append(valid, b)
		for _, day := range b.Range.Days() {
			wanted[day] = struct{}{}
		}
	}

	have := make(map[time.Time]domainavailability.Cell, len(cells))
	for _, cell := range cells {
		day := daterange.Day(cell.Date)
		have[day] = cell
		if cell.Source != domainavailability.SourceReservation {
			continue
		}
		if _, ok := wanted[day]; ok {
			continue
		}
		if err := s.Ledger.Release(ctx, propertyID, daterange.DateRange{CheckIn: day, CheckOut: day.AddDate(0, 0, 1)}); err != nil {
			return result, fmt.Errorf("release stale day %s: %w", day.Format(daterange.DayLayout), err)
		}
		result.Released++
	}

	for _, b := range valid {
		missing := 0
		for _, day := range b.Range.Days() {
			cell, ok := have[day]
			if !ok || (cell.Source == domainavailability.SourceReservation && cell.Ref != string(b.ID)) {
				missing++
			}
		}
		if missing == 0 {
			continue
		}
		if err := s.Ledger.Block(ctx, propertyID, b.Range, domainavailability.BlockOptions{Ref: string(b.ID)}); err != nil {
			return result, fmt.Errorf("block booking %s: %w", b.ID, err)
		}
		result.Blocked += missing
	}
	return result, nil
}
