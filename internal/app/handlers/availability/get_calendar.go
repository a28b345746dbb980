package availability

import (
	"context"
	"fmt"

	"rentops/internal/app/dto"
	domainavailability "rentops/internal/domain/availability"
	domainbooking "rentops/internal/domain/booking"
	"rentops/internal/domain/shared/daterange"
)

const getCalendarKey = "availability.calendar"

// GetCalendarQuery asks for one cell per day in [From, To).
type GetCalendarQuery struct {
	PropertyID string `validate:"required"`
	From       string `validate:"required,datetime=2006-01-02"`
	To         string `validate:"required,datetime=2006-01-02"`
}

func (GetCalendarQuery) Key() string { return getCalendarKey }

func (s *Service) GetCalendar(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	if err := s.ready(); err != nil {
		return dto.Calendar{}, err
	}
	r, err := daterange.Parse(q.From, q.To)
	if err != nil {
		return dto.Calendar{}, domainbooking.InvalidCause("range", err)
	}
	if r.Nights() > maxCalendarDays {
		return dto.Calendar{}, domainbooking.Invalid("range", fmt.Sprintf("at most %d days per request", maxCalendarDays))
	}
	if err := s.requirePropertyAccess(ctx, q.PropertyID); err != nil {
		return dto.Calendar{}, err
	}
	blocked, err := s.Ledger.Cells(ctx, q.PropertyID, r)
	if err != nil {
		return dto.Calendar{}, fmt.Errorf("read calendar: %w", err)
	}
	return dto.MapCalendar(q.PropertyID, r, domainavailability.Expand(q.PropertyID, r, blocked)), nil
}
