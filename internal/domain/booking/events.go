package booking

import (
	"time"

	"rentops/internal/domain/shared/daterange"
	"rentops/internal/domain/shared/money"
)

// Snapshot is the booking state carried by post-commit events.
type Snapshot struct {
	BookingID  BookingID
	PropertyID string
	Status     Status
	Range      daterange.DateRange
	Guest      GuestContact
	Guests     int
	Total      money.Money
	Source     Source
}

type Created struct {
	Booking Snapshot
	At      time.Time
}

func (e Created) EventName() string     { return "booking.created" }
func (e Created) AggregateID() string   { return string(e.Booking.BookingID) }
func (e Created) OccurredAt() time.Time { return e.At }

type DatesChanged struct {
	Booking  Snapshot
	Previous daterange.DateRange
	At       time.Time
}

func (e DatesChanged) EventName() string     { return "booking.dates_changed" }
func (e DatesChanged) AggregateID() string   { return string(e.Booking.BookingID) }
func (e DatesChanged) OccurredAt() time.Time { return e.At }

type HoldConverted struct {
	Booking Snapshot
	At      time.Time
}

func (e HoldConverted) EventName() string     { return "booking.hold_converted" }
func (e HoldConverted) AggregateID() string   { return string(e.Booking.BookingID) }
func (e HoldConverted) OccurredAt() time.Time { return e.At }

type HoldExtended struct {
	Booking   Snapshot
	HoldUntil time.Time
	At        time.Time
}

func (e HoldExtended) EventName() string     { return "booking.hold_extended" }
func (e HoldExtended) AggregateID() string   { return string(e.Booking.BookingID) }
func (e HoldExtended) OccurredAt() time.Time { return e.At }

type Cancelled struct {
	Booking        Snapshot
	PreviousStatus Status
	Reason         string
	At             time.Time
}

func (e Cancelled) EventName() string     { return "booking.cancelled" }
func (e Cancelled) AggregateID() string   { return string(e.Booking.BookingID) }
func (e Cancelled) OccurredAt() time.Time { return e.At }

// ReleasesAvailability is true when the booking owned its dates before cancellation.
func (e Cancelled) ReleasesAvailability() bool {
	return e.PreviousStatus.Blocking()
}

// ReversesGuestAggregate is true for cancellations of pending and on-hold bookings.
func (e Cancelled) ReversesGuestAggregate() bool {
	return e.PreviousStatus == StatusPending || e.PreviousStatus == StatusOnHold
}

type Completed struct {
	Booking Snapshot
	At      time.Time
}

func (e Completed) EventName() string     { return "booking.completed" }
func (e Completed) AggregateID() string   { return string(e.Booking.BookingID) }
func (e Completed) OccurredAt() time.Time { return e.At }
