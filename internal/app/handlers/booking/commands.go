package booking

import (
	"rentops/internal/app/dto"
	"rentops/internal/app/middleware"
)

const (
	createBookingKey   = "booking.create"
	updateBookingKey   = "booking.update"
	convertHoldKey     = "booking.convert_hold"
	cancelHoldKey      = "booking.cancel_hold"
	extendHoldKey      = "booking.extend_hold"
	cancelBookingKey   = "booking.cancel"
	completeBookingKey = "booking.complete"
	bulkCancelKey      = "booking.bulk_cancel"
	bulkCompleteKey    = "booking.bulk_complete"
	getBookingKey      = "booking.get"
	listBookingsKey    = "booking.list"
)

type GuestInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

type FeeInput struct {
	Name   string `json:"name" validate:"required"`
	Amount int64  `json:"amount" validate:"gte=0"`
}

type CreateBookingCommand struct {
	PropertyID string     `json:"property_id" validate:"required"`
	Guest      GuestInput `json:"guest"`
	CheckIn    string     `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut   string     `json:"check_out" validate:"required,datetime=2006-01-02"`
	Guests     int        `json:"guests" validate:"gt=0"`
	// Status defaults to confirmed.
	Status string `json:"status" validate:"omitempty,oneof=pending on-hold confirmed payment_failed"`
	// HoldHours sets holdUntil for on-hold bookings; zero uses the configured default.
	HoldHours   int        `json:"hold_hours" validate:"gte=0"`
	NightlyRate int64      `json:"nightly_rate" validate:"gte=0"`
	Fees        []FeeInput `json:"fees" validate:"dive"`
	Source      string     `json:"source" validate:"omitempty,oneof=direct manual external"`
	Note        string     `json:"note"`

	IdempotencyKeyV string `json:"-"`
}

func (CreateBookingCommand) Key() string                { return createBookingKey }
func (c CreateBookingCommand) IdempotencyKey() string   { return c.IdempotencyKeyV }
func (c CreateBookingCommand) IdempotencyScope() string { return c.PropertyID }
func (CreateBookingCommand) ResultPrototype() any       { return &dto.Booking{} }

// UpdateBookingCommand carries a typed patch. Nil fields are left unchanged.
type UpdateBookingCommand struct {
	BookingID   string      `json:"-" validate:"required"`
	CheckIn     *string     `json:"check_in" validate:"omitempty,datetime=2006-01-02"`
	CheckOut    *string     `json:"check_out" validate:"omitempty,datetime=2006-01-02"`
	Guests      *int        `json:"guests" validate:"omitempty,gt=0"`
	Guest       *GuestInput `json:"guest" validate:"omitempty"`
	NightlyRate *int64      `json:"nightly_rate" validate:"omitempty,gte=0"`
	Fees        *[]FeeInput `json:"fees"`
	Note        string      `json:"note"`
}

func (UpdateBookingCommand) Key() string { return updateBookingKey }

type ConvertHoldCommand struct {
	BookingID string `json:"-" validate:"required"`
	Note      string `json:"note"`

	IdempotencyKeyV string `json:"-"`
}

func (ConvertHoldCommand) Key() string                { return convertHoldKey }
func (c ConvertHoldCommand) IdempotencyKey() string   { return c.IdempotencyKeyV }
func (c ConvertHoldCommand) IdempotencyScope() string { return c.BookingID }
func (ConvertHoldCommand) ResultPrototype() any       { return &dto.Booking{} }

type CancelHoldCommand struct {
	BookingID string `json:"-" validate:"required"`
	Reason    string `json:"reason"`
}

func (CancelHoldCommand) Key() string { return cancelHoldKey }

type ExtendHoldCommand struct {
	BookingID string `json:"-" validate:"required"`
	Hours     int    `json:"hours" validate:"gt=0"`
}

func (ExtendHoldCommand) Key() string { return extendHoldKey }

type CancelBookingCommand struct {
	BookingID string `json:"-" validate:"required"`
	Reason    string `json:"reason"`
}

func (CancelBookingCommand) Key() string { return cancelBookingKey }

type CompleteBookingCommand struct {
	BookingID string `json:"-" validate:"required"`
	Note      string `json:"note"`
}

func (CompleteBookingCommand) Key() string { return completeBookingKey }

type BulkCancelCommand struct {
	BookingIDs []string `json:"booking_ids" validate:"required,min=1,dive,required"`
	Reason     string   `json:"reason"`
}

func (BulkCancelCommand) Key() string { return bulkCancelKey }

type BulkCompleteCommand struct {
	BookingIDs []string `json:"booking_ids" validate:"required,min=1,dive,required"`
}

func (BulkCompleteCommand) Key() string { return bulkCompleteKey }

type GetBookingQuery struct {
	BookingID string `validate:"required"`
}

func (GetBookingQuery) Key() string { return getBookingKey }

type ListBookingsQuery struct {
	PropertyID string
	Status     string `validate:"omitempty,oneof=pending on-hold confirmed payment_failed cancelled completed"`
	Limit      int    `validate:"gte=0,lte=500"`
}

func (ListBookingsQuery) Key() string { return listBookingsKey }

var (
	_ middleware.IdempotentCommand = CreateBookingCommand{}
	_ middleware.IdempotentCommand = ConvertHoldCommand{}
)
