package booking

import (
	"fmt"

	"rentops/internal/domain/shared/daterange"
)

type Conflict struct {
	BookingID BookingID
	GuestName string
	Status    Status
	Range     daterange.DateRange
}

func (c Conflict) Description() string {
	guest := c.GuestName
	if guest == "" {
		guest = "unnamed guest"
	}
	return fmt.Sprintf("booking %s for %s (%s, %s)", c.BookingID, guest, c.Range.String(), c.Status)
}

// MalformedFunc receives stored bookings whose range cannot be evaluated.
type MalformedFunc func(b *Booking, err error)

// FindConflict returns the first blocking booking on the property whose
// range overlaps r. Pending, cancelled and payment_failed bookings never
// block; expired holds still do.
func FindConflict(existing []*Booking, propertyID string, r daterange.DateRange, exclude BookingID, malformed MalformedFunc) *Conflict {
	for _, other := range existing {
		if other == nil || other.PropertyID != propertyID {
			continue
		}
		if exclude != "" && other.ID == exclude {
			continue
		}
		if !other.Status.Blocking() {
			continue
		}
		if err := other.Range.Validate(); err != nil {
			if malformed != nil {
				malformed(other, err)
			}
			continue
		}
		if other.Range.Overlaps(r) {
			return &Conflict{
				BookingID: other.ID,
				GuestName: other.Guest.Name,
				Status:    other.Status,
				Range:     other.Range,
			}
		}
	}
	return nil
}
