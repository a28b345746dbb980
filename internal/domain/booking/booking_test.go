package booking

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentops/internal/domain/shared/daterange"
	"rentops/internal/domain/shared/money"
)

var testNow = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

func mustRange(t *testing.T, in, out string) daterange.DateRange {
	t.Helper()
	dr, err := daterange.Parse(in, out)
	require.NoError(t, err)
	return dr
}

func newTestBooking(t *testing.T, status Status) *Booking {
	t.Helper()
	b, err := NewBooking(CreateParams{
		ID:          "bk-1",
		PropertyID:  "villa-1",
		Guest:       GuestContact{Name: "Ana Silva", Email: "ana@example.com"},
		Range:       mustRange(t, "2025-06-01", "2025-06-05"),
		Guests:      2,
		Status:      status,
		HoldUntil:   testNow.Add(24 * time.Hour),
		NightlyRate: money.Must(12000, "EUR"),
		Fees:        []Fee{{Name: "cleaning", Amount: money.Must(5000, "EUR")}},
		CreatedAt:   testNow,
	})
	require.NoError(t, err)
	b.ClearEvents()
	return b
}

func TestNewBooking_ComputesPricingSnapshot(t *testing.T) {
	b := newTestBooking(t, StatusConfirmed)
	assert.Equal(t, 4, b.Pricing.Nights)
	assert.Equal(t, money.Must(53000, "EUR"), b.Pricing.Total)
	assert.Nil(t, b.HoldUntil)
	assert.Equal(t, SourceManual, b.Source)
	assert.Contains(t, b.Notes, "created as confirmed")
}

func TestNewBooking_HoldUntilOnlyForHolds(t *testing.T) {
	hold := newTestBooking(t, StatusOnHold)
	require.NotNil(t, hold.HoldUntil)
	assert.Equal(t, testNow.Add(24*time.Hour), *hold.HoldUntil)

	pending := newTestBooking(t, StatusPending)
	assert.Nil(t, pending.HoldUntil)
}

func TestNewBooking_Validation(t *testing.T) {
	base := CreateParams{
		ID:          "bk-1",
		PropertyID:  "villa-1",
		Guest:       GuestContact{Name: "Ana"},
		Range:       mustRange(t, "2025-06-01", "2025-06-02"),
		Guests:      1,
		NightlyRate: money.Must(100, "EUR"),
		CreatedAt:   testNow,
	}

	cases := map[string]func(p *CreateParams){
		"missing property": func(p *CreateParams) { p.PropertyID = "" },
		"missing guest":    func(p *CreateParams) { p.Guest.Name = " " },
		"zero guests":      func(p *CreateParams) { p.Guests = 0 },
		"zero nights":      func(p *CreateParams) { p.Range = daterange.DateRange{CheckIn: p.Range.CheckIn, CheckOut: p.Range.CheckIn} },
		"created cancelled": func(p *CreateParams) { p.Status = StatusCancelled },
		"hold in past": func(p *CreateParams) {
			p.Status = StatusOnHold
			p.HoldUntil = testNow.Add(-time.Hour)
		},
		"no currency": func(p *CreateParams) { p.NightlyRate = money.Money{Amount: 100} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := base
			mutate(&p)
			_, err := NewBooking(p)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestApply_ConvertHoldClearsHoldUntil(t *testing.T) {
	b := newTestBooking(t, StatusOnHold)

	require.NoError(t, b.Apply(ActionConvertHold, testNow, "deposit received"))

	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Nil(t, b.HoldUntil)
	assert.True(t, b.ConvertedFromHold)
	assert.Contains(t, b.Notes, "on-hold -> confirmed: deposit received")
	evs := b.PendingEvents()
	require.Len(t, evs, 1)
	assert.IsType(t, HoldConverted{}, evs[0])
}

func TestApply_CancelRecordsPreviousStatus(t *testing.T) {
	b := newTestBooking(t, StatusOnHold)

	require.NoError(t, b.Apply(ActionCancelHold, testNow, ""))

	assert.Equal(t, StatusCancelled, b.Status)
	require.NotNil(t, b.CancelledAt)
	assert.Nil(t, b.HoldUntil)
	evs := b.PendingEvents()
	require.Len(t, evs, 1)
	ev, ok := evs[0].(Cancelled)
	require.True(t, ok)
	assert.Equal(t, StatusOnHold, ev.PreviousStatus)
	assert.True(t, ev.ReleasesAvailability())
	assert.True(t, ev.ReversesGuestAggregate())
}

func TestApply_BulkCompleteRequiresPastCheckout(t *testing.T) {
	b := newTestBooking(t, StatusConfirmed)

	err := b.Apply(ActionBulkComplete, time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC), "")
	var illegal *IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, StatusConfirmed, illegal.Current)
	assert.Equal(t, StatusConfirmed, b.Status)

	require.NoError(t, b.Apply(ActionBulkComplete, time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC), ""))
	assert.Equal(t, StatusCompleted, b.Status)
}

func TestApply_ManualCompleteIgnoresCheckout(t *testing.T) {
	b := newTestBooking(t, StatusConfirmed)
	require.NoError(t, b.Apply(ActionComplete, testNow, ""))
	assert.Equal(t, StatusCompleted, b.Status)
}

func TestExtendHold(t *testing.T) {
	b := newTestBooking(t, StatusOnHold)
	before := *b.HoldUntil

	require.NoError(t, b.ExtendHold(24, testNow))
	assert.Equal(t, before.Add(24*time.Hour), *b.HoldUntil)
	assert.Equal(t, StatusOnHold, b.Status)
}

func TestExtendHold_RejectsNonPositiveHours(t *testing.T) {
	b := newTestBooking(t, StatusOnHold)
	before := *b.HoldUntil

	for _, hours := range []int{0, -3} {
		err := b.ExtendHold(hours, testNow)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, before, *b.HoldUntil)
	}
	assert.Empty(t, b.PendingEvents())
}

func TestExtendHold_RejectsConfirmed(t *testing.T) {
	b := newTestBooking(t, StatusConfirmed)

	err := b.ExtendHold(24, testNow)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Contains(t, err.Error(), "confirmed")
	assert.Nil(t, b.HoldUntil)
}

func TestHoldExpired(t *testing.T) {
	b := newTestBooking(t, StatusOnHold)
	assert.False(t, b.HoldExpired(testNow))
	assert.True(t, b.HoldExpired(testNow.Add(24*time.Hour)))
	assert.Equal(t, StatusOnHold, b.Status)
}

func TestApplyPatch_DatesRepriceBeforeEvent(t *testing.T) {
	b := newTestBooking(t, StatusConfirmed)
	next := mustRange(t, "2025-06-10", "2025-06-12")

	changed, err := b.ApplyPatch(Patch{Range: &next, Note: "guest asked to move"}, testNow)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, b.Pricing.Nights)
	assert.Equal(t, money.Must(29000, "EUR"), b.Pricing.Total)

	evs := b.PendingEvents()
	require.Len(t, evs, 1)
	moved := evs[0].(DatesChanged)
	assert.Equal(t, mustRange(t, "2025-06-01", "2025-06-05"), moved.Previous)
	assert.Equal(t, money.Must(29000, "EUR"), moved.Booking.Total)
	assert.Contains(t, b.Notes, "guest asked to move")
}

func TestApplyPatch_FailedRepriceLeavesBookingUntouched(t *testing.T) {
	b := newTestBooking(t, StatusConfirmed)
	rate := money.Must(math.MaxInt64/2, "EUR")

	_, err := b.ApplyPatch(Patch{NightlyRate: &rate}, testNow)
	require.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, money.ErrOverflow)
	assert.Equal(t, money.Must(12000, "EUR"), b.Pricing.NightlyRate)
	assert.Equal(t, money.Must(53000, "EUR"), b.Pricing.Total)
	assert.Empty(t, b.PendingEvents())
}

func TestStayLength_IsCapped(t *testing.T) {
	_, err := NewBooking(CreateParams{
		ID:          "bk-long",
		PropertyID:  "villa-1",
		Guest:       GuestContact{Name: "Ana Silva"},
		Range:       mustRange(t, "1700-01-01", "2100-01-01"),
		Guests:      1,
		NightlyRate: money.Must(5_000_000_000_000_000_000, "EUR"),
		CreatedAt:   testNow,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "dates", verr.Field)

	b := newTestBooking(t, StatusConfirmed)
	long := mustRange(t, "2025-06-01", "2026-06-02")
	_, err = b.ApplyPatch(Patch{Range: &long}, testNow)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 4, b.Range.Nights())

	year := mustRange(t, "2025-06-01", "2026-06-01")
	_, err = b.ApplyPatch(Patch{Range: &year}, testNow)
	require.NoError(t, err)
	assert.Equal(t, MaxStayNights, b.Pricing.Nights)
}

func TestApplyPatch_RejectedForClosedStatuses(t *testing.T) {
	b := newTestBooking(t, StatusConfirmed)
	require.NoError(t, b.Apply(ActionCancel, testNow, ""))
	guests := 3

	_, err := b.ApplyPatch(Patch{Guests: &guests}, testNow)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, 2, b.Guests)
}

func TestApplyPatch_CurrencyIsFixed(t *testing.T) {
	b := newTestBooking(t, StatusConfirmed)
	rate := money.Must(100, "USD")
	_, err := b.ApplyPatch(Patch{NightlyRate: &rate}, testNow)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestClone_IsDeep(t *testing.T) {
	b := newTestBooking(t, StatusOnHold)
	clone := b.Clone()
	*clone.HoldUntil = clone.HoldUntil.Add(time.Hour)
	clone.Pricing.Fees[0].Name = "changed"
	assert.NotEqual(t, *b.HoldUntil, *clone.HoldUntil)
	assert.Equal(t, "cleaning", b.Pricing.Fees[0].Name)
}

func TestErrorsKeepTheirKind(t *testing.T) {
	var err error = &ConflictError{Conflict: Conflict{BookingID: "a", GuestName: "Ana"}}
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrValidation))

	err = &AuthorizationError{Reason: "no access"}
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, errors.Is(err, ErrNotFound))

	err = BookingNotFound("x")
	assert.True(t, errors.Is(err, ErrNotFound))
}
