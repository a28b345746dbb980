package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentops/internal/domain/shared/daterange"
)

func stored(id BookingID, status Status, dr daterange.DateRange) *Booking {
	return &Booking{ID: id, PropertyID: "villa-1", Status: status, Range: dr, Guest: GuestContact{Name: "Guest " + string(id)}}
}

func TestFindConflict_BoundaryIsNotConflict(t *testing.T) {
	a := stored("A", StatusConfirmed, mustRange(t, "2025-06-01", "2025-06-05"))
	existing := []*Booking{a}

	c := FindConflict(existing, "villa-1", mustRange(t, "2025-06-04", "2025-06-08"), "", nil)
	require.NotNil(t, c)
	assert.Equal(t, BookingID("A"), c.BookingID)
	assert.Contains(t, c.Description(), "Guest A")
	assert.Contains(t, c.Description(), "2025-06-01 to 2025-06-05")

	assert.Nil(t, FindConflict(existing, "villa-1", mustRange(t, "2025-06-05", "2025-06-08"), "", nil))
}

func TestFindConflict_OnlyBlockingStatuses(t *testing.T) {
	dr := mustRange(t, "2025-06-01", "2025-06-05")
	for _, status := range Statuses {
		existing := []*Booking{stored("A", status, dr)}
		c := FindConflict(existing, "villa-1", dr, "", nil)
		assert.Equal(t, status.Blocking(), c != nil, status)
	}
}

func TestFindConflict_ExpiredHoldStillBlocks(t *testing.T) {
	hold := stored("H", StatusOnHold, mustRange(t, "2025-06-01", "2025-06-05"))
	expired := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	hold.HoldUntil = &expired

	assert.NotNil(t, FindConflict([]*Booking{hold}, "villa-1", mustRange(t, "2025-06-02", "2025-06-03"), "", nil))
}

func TestFindConflict_ExcludesEditedBookingAndOtherProperties(t *testing.T) {
	dr := mustRange(t, "2025-06-01", "2025-06-05")
	self := stored("A", StatusConfirmed, dr)
	elsewhere := stored("B", StatusConfirmed, dr)
	elsewhere.PropertyID = "villa-2"

	assert.Nil(t, FindConflict([]*Booking{self, elsewhere}, "villa-1", dr, "A", nil))
}

func TestFindConflict_SkipsMalformedRanges(t *testing.T) {
	broken := stored("X", StatusConfirmed, daterange.DateRange{})
	var reported []BookingID

	c := FindConflict([]*Booking{broken}, "villa-1", mustRange(t, "2025-06-01", "2025-06-05"), "", func(b *Booking, err error) {
		reported = append(reported, b.ID)
		assert.ErrorIs(t, err, daterange.ErrInvalidRange)
	})

	assert.Nil(t, c)
	assert.Equal(t, []BookingID{"X"}, reported)
}

func TestFindConflict_MatchesIntervalFormula(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	d := func(n int) time.Time { return base.AddDate(0, 0, n) }

	for aIn := 0; aIn < 6; aIn++ {
		for aOut := aIn + 1; aOut <= 7; aOut++ {
			for bIn := 0; bIn < 6; bIn++ {
				for bOut := bIn + 1; bOut <= 7; bOut++ {
					a := daterange.DateRange{CheckIn: d(aIn), CheckOut: d(aOut)}
					b := daterange.DateRange{CheckIn: d(bIn), CheckOut: d(bOut)}
					want := aIn < bOut && aOut > bIn
					got := FindConflict([]*Booking{stored("A", StatusConfirmed, a)}, "villa-1", b, "", nil) != nil
					require.Equal(t, want, got, "A=%v B=%v", a, b)
				}
			}
		}
	}
}
