package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentops/internal/domain/shared/daterange"
	"rentops/internal/domain/shared/events"
	"rentops/internal/domain/shared/money"
)

type BookingID string

// MaxStayNights caps a single booking's length.
const MaxStayNights = 365

type Source string

const (
	SourceDirect   Source = "direct"
	SourceManual   Source = "manual"
	SourceExternal Source = "external"
)

type GuestContact struct {
	Name  string
	Email string
	Phone string
}

// Key identifies a guest across bookings by email, falling back to name.
func (g GuestContact) Key() string {
	if email := strings.ToLower(strings.TrimSpace(g.Email)); email != "" {
		return email
	}
	return "name:" + strings.ToLower(strings.TrimSpace(g.Name))
}

type Booking struct {
	ID                BookingID
	PropertyID        string
	Guest             GuestContact
	Range             daterange.DateRange
	Guests            int
	Source            Source
	Status            Status
	HoldUntil         *time.Time
	ConvertedFromHold bool
	CancelledAt       *time.Time
	Notes             string
	Pricing           Pricing
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int64
	events.EventRecorder
}

type ListFilter struct {
	PropertyID  string
	PropertyIDs []string
	Statuses    []Status
	Limit       int
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Create(ctx context.Context, b *Booking) error
	// Save persists a mutation only if the stored version still matches b.Version.
	Save(ctx context.Context, b *Booking) error
	List(ctx context.Context, filter ListFilter) ([]*Booking, error)
}

type CreateParams struct {
	ID          BookingID
	PropertyID  string
	Guest       GuestContact
	Range       daterange.DateRange
	Guests      int
	Source      Source
	Status      Status
	HoldUntil   time.Time
	NightlyRate money.Money
	Fees        []Fee
	Note        string
	CreatedAt   time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.ID == "" {
		return nil, Invalid("id", "required")
	}
	if strings.TrimSpace(params.PropertyID) == "" {
		return nil, Invalid("property_id", "required")
	}
	if strings.TrimSpace(params.Guest.Name) == "" {
		return nil, Invalid("guest.name", "required")
	}
	if params.Guests <= 0 {
		return nil, Invalid("guests", "must be positive")
	}
	if err := validateStay(params.Range); err != nil {
		return nil, err
	}
	status := params.Status
	if status == "" {
		status = StatusConfirmed
	}
	switch status {
	case StatusPending, StatusOnHold, StatusConfirmed, StatusPaymentFailed:
	default:
		return nil, Invalid("status", "bookings cannot be created as "+string(status))
	}
	now := params.CreatedAt.UTC()
	var holdUntil *time.Time
	if status == StatusOnHold {
		if !params.HoldUntil.After(now) {
			return nil, Invalid("hold_until", "must be in the future")
		}
		t := params.HoldUntil.UTC()
		holdUntil = &t
	}
	source := params.Source
	if source == "" {
		source = SourceManual
	}

	pricing := Pricing{
		NightlyRate: params.NightlyRate,
		Nights:      params.Range.Nights(),
		Fees:        append([]Fee(nil), params.Fees...),
	}
	if err := pricing.Recalculate(); err != nil {
		return nil, asValidation("pricing", err)
	}

	b := &Booking{
		ID:         params.ID,
		PropertyID: strings.TrimSpace(params.PropertyID),
		Guest:      params.Guest,
		Range:      params.Range,
		Guests:     params.Guests,
		Source:     source,
		Status:     status,
		HoldUntil:  holdUntil,
		Pricing:    pricing,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	b.AppendNote(now, "created as "+string(status))
	if note := strings.TrimSpace(params.Note); note != "" {
		b.AppendNote(now, note)
	}
	b.Record(Created{Booking: b.Snapshot(), At: now})
	return b, nil
}

// Apply performs a legal status transition. The booking is left untouched
// when the transition is rejected.
func (b *Booking) Apply(action Action, now time.Time, note string) error {
	to, ok := Target(b.Status, action)
	if !ok {
		return b.illegal(action, "")
	}
	if action == ActionBulkComplete && !checkoutPassed(b.Range, now) {
		return b.illegal(action, "checkout date "+b.Range.CheckOut.Format(daterange.DayLayout)+" is not in the past")
	}

	from := b.Status
	now = now.UTC()
	b.Status = to
	b.UpdatedAt = now
	if from == StatusOnHold {
		b.HoldUntil = nil
	}

	msg := string(from) + " -> " + string(to)
	if note = strings.TrimSpace(note); note != "" {
		msg += ": " + note
	}
	b.AppendNote(now, msg)

	switch to {
	case StatusConfirmed:
		b.ConvertedFromHold = true
		b.Record(HoldConverted{Booking: b.Snapshot(), At: now})
	case StatusCancelled:
		cancelledAt := now
		b.CancelledAt = &cancelledAt
		b.Record(Cancelled{Booking: b.Snapshot(), PreviousStatus: from, Reason: note, At: now})
	case StatusCompleted:
		b.Record(Completed{Booking: b.Snapshot(), At: now})
	}
	return nil
}

// ExtendHold pushes holdUntil forward; it never changes status.
func (b *Booking) ExtendHold(hours int, now time.Time) error {
	if b.Status != StatusOnHold {
		return b.illegal(ActionExtendHold, "hold extension only applies to on-hold bookings")
	}
	if hours <= 0 {
		return Invalid("hours", "must be positive")
	}
	now = now.UTC()
	base := now
	if b.HoldUntil != nil {
		base = *b.HoldUntil
	}
	next := base.Add(time.Duration(hours) * time.Hour)
	b.HoldUntil = &next
	b.UpdatedAt = now
	b.AppendNote(now, "hold extended until "+next.Format(time.RFC3339))
	b.Record(HoldExtended{Booking: b.Snapshot(), HoldUntil: next, At: now})
	return nil
}

// HoldExpired reports whether an on-hold booking is past its deadline.
// Expired holds keep blocking until explicitly cancelled.
func (b *Booking) HoldExpired(now time.Time) bool {
	return b.Status == StatusOnHold && b.HoldUntil != nil && !now.Before(*b.HoldUntil)
}

// AppendNote adds a timestamped line to the audit trail.
func (b *Booking) AppendNote(now time.Time, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	line := "[" + now.UTC().Format("2006-01-02 15:04") + "] " + text
	if b.Notes == "" {
		b.Notes = line
		return
	}
	b.Notes += "\n" + line
}

func (b *Booking) Snapshot() Snapshot {
	return Snapshot{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		Status:     b.Status,
		Range:      b.Range,
		Guest:      b.Guest,
		Guests:     b.Guests,
		Total:      b.Pricing.Total,
		Source:     b.Source,
	}
}

// Clone returns a deep copy without pending events.
func (b *Booking) Clone() *Booking {
	clone := *b
	clone.EventRecorder = events.EventRecorder{}
	clone.Pricing = b.Pricing.Copy()
	if b.HoldUntil != nil {
		t := *b.HoldUntil
		clone.HoldUntil = &t
	}
	if b.CancelledAt != nil {
		t := *b.CancelledAt
		clone.CancelledAt = &t
	}
	return &clone
}

func (b *Booking) illegal(action Action, reason string) *IllegalTransitionError {
	return &IllegalTransitionError{BookingID: b.ID, Current: b.Status, Action: action, Reason: reason}
}

func checkoutPassed(r daterange.DateRange, now time.Time) bool {
	return daterange.Day(r.CheckOut).Before(daterange.Day(now))
}

func validateStay(r daterange.DateRange) error {
	if err := r.Validate(); err != nil {
		return InvalidCause("dates", err)
	}
	nights := r.Nights()
	if nights < 1 {
		return Invalid("dates", "stay must be at least one night")
	}
	if nights > MaxStayNights {
		return Invalid("dates", fmt.Sprintf("stay cannot exceed %d nights", MaxStayNights))
	}
	return nil
}

func asValidation(field string, err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return InvalidCause(field, err)
}
