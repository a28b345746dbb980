package booking

import (
	"context"
	"time"

	"rentops/internal/app/dto"
	domainbooking "rentops/internal/domain/booking"
)

func (l *Lifecycle) ConvertHold(ctx context.Context, cmd ConvertHoldCommand) (dto.Booking, error) {
	return l.transition(ctx, cmd.BookingID, domainbooking.ActionConvertHold, cmd.Note)
}

func (l *Lifecycle) CancelHold(ctx context.Context, cmd CancelHoldCommand) (dto.Booking, error) {
	return l.transition(ctx, cmd.BookingID, domainbooking.ActionCancelHold, cmd.Reason)
}

func (l *Lifecycle) CancelBooking(ctx context.Context, cmd CancelBookingCommand) (dto.Booking, error) {
	return l.transition(ctx, cmd.BookingID, domainbooking.ActionCancel, cmd.Reason)
}

// CompleteBooking is the manual single-record completion; it does not wait
// for checkout.
func (l *Lifecycle) CompleteBooking(ctx context.Context, cmd CompleteBookingCommand) (dto.Booking, error) {
	return l.transition(ctx, cmd.BookingID, domainbooking.ActionComplete, cmd.Note)
}

// ExtendHold pushes holdUntil forward by cmd.Hours without changing status.
func (l *Lifecycle) ExtendHold(ctx context.Context, cmd ExtendHoldCommand) (dto.Booking, error) {
	if _, err := l.requireAdmin(ctx); err != nil {
		return dto.Booking{}, err
	}
	b, err := l.mutate(ctx, domainbooking.BookingID(cmd.BookingID), false, func(_ context.Context, b *domainbooking.Booking, now time.Time) error {
		return b.ExtendHold(cmd.Hours, now)
	})
	if err != nil {
		return dto.Booking{}, err
	}
	return dto.MapBooking(b, l.now()), nil
}

func (l *Lifecycle) transition(ctx context.Context, id string, action domainbooking.Action, note string) (dto.Booking, error) {
	if _, err := l.requireAdmin(ctx); err != nil {
		return dto.Booking{}, err
	}
	b, err := l.apply(ctx, domainbooking.BookingID(id), action, note)
	if err != nil {
		return dto.Booking{}, err
	}
	return dto.MapBooking(b, l.now()), nil
}

func (l *Lifecycle) apply(ctx context.Context, id domainbooking.BookingID, action domainbooking.Action, note string) (*domainbooking.Booking, error) {
	b, err := l.mutate(ctx, id, false, func(_ context.Context, b *domainbooking.Booking, now time.Time) error {
		return b.Apply(action, now, note)
	})
	if err != nil {
		return nil, err
	}
	l.logger().Info("booking transitioned",
		"booking_id", b.ID,
		"action", action,
		"status", b.Status)
	return b, nil
}
