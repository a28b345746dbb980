package booking

import (
	"context"
	"strings"
	"time"

	"rentops/internal/app/dto"
	domainbooking "rentops/internal/domain/booking"
	"rentops/internal/domain/shared/daterange"
	"rentops/internal/domain/shared/money"
)

// UpdateBooking applies a typed patch. Date changes are conflict-checked
// against other bookings and reprice the snapshot.
func (l *Lifecycle) UpdateBooking(ctx context.Context, cmd UpdateBookingCommand) (dto.Booking, error) {
	if _, err := l.requireAdmin(ctx); err != nil {
		return dto.Booking{}, err
	}
	movesDates := cmd.CheckIn != nil || cmd.CheckOut != nil
	b, err := l.mutate(ctx, domainbooking.BookingID(cmd.BookingID), movesDates, func(ctx context.Context, b *domainbooking.Booking, now time.Time) error {
		patch, err := buildPatch(b, cmd)
		if err != nil {
			return err
		}
		if patch.Range != nil && b.Status.Editable() && !sameRange(*patch.Range, b.Range) {
			if err := l.checkConflict(ctx, b.PropertyID, *patch.Range, b.ID); err != nil {
				return err
			}
		}
		_, err = b.ApplyPatch(patch, now)
		return err
	})
	if err != nil {
		return dto.Booking{}, err
	}
	return dto.MapBooking(b, l.now()), nil
}

// buildPatch resolves the command against the current booking. A single
// date bound keeps the other bound of the stored range.
func buildPatch(b *domainbooking.Booking, cmd UpdateBookingCommand) (domainbooking.Patch, error) {
	patch := domainbooking.Patch{Guests: cmd.Guests, Note: cmd.Note}
	if cmd.CheckIn != nil || cmd.CheckOut != nil {
		in, out := b.Range.CheckIn.Format(daterange.DayLayout), b.Range.CheckOut.Format(daterange.DayLayout)
		if cmd.CheckIn != nil {
			in = *cmd.CheckIn
		}
		if cmd.CheckOut != nil {
			out = *cmd.CheckOut
		}
		dr, err := daterange.Parse(in, out)
		if err != nil {
			return patch, domainbooking.InvalidCause("dates", err)
		}
		patch.Range = &dr
	}
	if cmd.Guest != nil {
		patch.Guest = &domainbooking.GuestContact{
			Name:  strings.TrimSpace(cmd.Guest.Name),
			Email: strings.TrimSpace(cmd.Guest.Email),
			Phone: strings.TrimSpace(cmd.Guest.Phone),
		}
	}
	currency := b.Pricing.Currency()
	if cmd.NightlyRate != nil {
		rate, err := money.New(*cmd.NightlyRate, currency)
		if err != nil {
			return patch, domainbooking.InvalidCause("nightly_rate", err)
		}
		patch.NightlyRate = &rate
	}
	if cmd.Fees != nil {
		fees, err := mapFees(*cmd.Fees, currency)
		if err != nil {
			return patch, err
		}
		patch.Fees = &fees
	}
	return patch, nil
}

func sameRange(a, b daterange.DateRange) bool {
	return a.CheckIn.Equal(b.CheckIn) && a.CheckOut.Equal(b.CheckOut)
}
