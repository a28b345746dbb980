package policies

import (
	"context"
	"time"

	domainrange "rentops/internal/domain/shared/daterange"
)

type CalendarUpdate struct {
	PropertyID string
	BookingID  string
	Range      domainrange.DateRange
	Blocked    bool
	// Firm is false while the dates are only held.
	Firm bool
	At   time.Time
}

// CalendarSync pushes block and release state to third-party channel managers.
type CalendarSync interface {
	Push(ctx context.Context, update CalendarUpdate) error
}
