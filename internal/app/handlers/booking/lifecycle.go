package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rentops/internal/app/policies"
	"rentops/internal/app/sideeffects"
	domainbooking "rentops/internal/domain/booking"
	domainproperty "rentops/internal/domain/property"
	"rentops/internal/domain/shared/events"
)

const (
	defaultHoldHours       = 24
	defaultBulkConcurrency = 8
)

// PostCommit receives the events of a committed booking write.
type PostCommit interface {
	Dispatch(ctx context.Context, evs []events.DomainEvent) sideeffects.Report
}

// Lifecycle is the only entry point that mutates bookings. Every operation
// re-reads the booking, checks access, validates the transition and writes
// the booking once. Ledger and other side effects run after the write and
// never turn a committed change into a failure.
type Lifecycle struct {
	Bookings   domainbooking.Repository
	Properties domainproperty.Directory
	Auth       policies.Authorizer
	Effects    PostCommit
	Logger     *slog.Logger
	Clock      func() time.Time
	NewID      func() string

	DefaultHoldHours int
	BulkConcurrency  int

	locks PropertyLocks
}

var ErrNotConfigured = errors.New("booking: lifecycle missing dependencies")

// mutation changes a freshly loaded booking in memory. It must leave the
// booking untouched when it returns an error.
type mutation func(ctx context.Context, b *domainbooking.Booking, now time.Time) error

// mutate runs one read-check-write cycle. serialize holds the property lock
// across the conflict check and the write.
func (l *Lifecycle) mutate(ctx context.Context, id domainbooking.BookingID, serialize bool, fn mutation) (*domainbooking.Booking, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	b, err := l.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := l.requirePropertyAccess(ctx, b.PropertyID); err != nil {
		return nil, err
	}

	var pending []events.DomainEvent
	write := func() error {
		if serialize {
			// the unlocked read only served the access check
			if b, err = l.load(ctx, id); err != nil {
				return err
			}
		}
		if err := fn(ctx, b, l.now()); err != nil {
			return err
		}
		pending = b.Drain()
		if err := l.Bookings.Save(ctx, b); err != nil {
			return fmt.Errorf("save booking %s: %w", b.ID, err)
		}
		return nil
	}
	if serialize {
		err = l.locks.Do(b.PropertyID, write)
	} else {
		err = write()
	}
	if err != nil {
		return nil, err
	}
	l.afterCommit(ctx, b, pending)
	return b, nil
}

func (l *Lifecycle) afterCommit(ctx context.Context, b *domainbooking.Booking, evs []events.DomainEvent) {
	if l.Effects == nil || len(evs) == 0 {
		return
	}
	report := l.Effects.Dispatch(ctx, evs)
	if !report.OK() {
		l.logger().Warn("booking committed with lagging side effects",
			"booking_id", b.ID,
			"property_id", b.PropertyID,
			"status", b.Status,
			"failed_handlers", len(report.Failures))
	}
}

func (l *Lifecycle) load(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	if id == "" {
		return nil, domainbooking.Invalid("booking_id", "required")
	}
	b, err := l.Bookings.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainbooking.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load booking %s: %w", id, err)
	}
	return b, nil
}

func (l *Lifecycle) requireAdmin(ctx context.Context) (policies.Principal, error) {
	p, err := l.Auth.RequireAdmin(ctx)
	if err != nil {
		return policies.Principal{}, asUnauthorized(err, "")
	}
	return p, nil
}

func (l *Lifecycle) requirePropertyAccess(ctx context.Context, propertyID string) error {
	if err := l.Auth.RequirePropertyAccess(ctx, propertyID); err != nil {
		return asUnauthorized(err, propertyID)
	}
	return nil
}

// asUnauthorized keeps authorization failures in their own error kind even
// when the authorizer reports them with a plain error.
func asUnauthorized(err error, propertyID string) error {
	if errors.Is(err, domainbooking.ErrUnauthorized) {
		return err
	}
	return &domainbooking.AuthorizationError{PropertyID: propertyID, Reason: err.Error()}
}

func (l *Lifecycle) ready() error {
	if l == nil || l.Bookings == nil || l.Auth == nil {
		return ErrNotConfigured
	}
	return nil
}

func (l *Lifecycle) now() time.Time {
	if l.Clock != nil {
		return l.Clock().UTC()
	}
	return time.Now().UTC()
}

func (l *Lifecycle) newID() domainbooking.BookingID {
	if l.NewID != nil {
		return domainbooking.BookingID(l.NewID())
	}
	return domainbooking.BookingID(uuid.NewString())
}

func (l *Lifecycle) holdHours(requested int) int {
	if requested > 0 {
		return requested
	}
	if l.DefaultHoldHours > 0 {
		return l.DefaultHoldHours
	}
	return defaultHoldHours
}

func (l *Lifecycle) bulkConcurrency() int {
	if l.BulkConcurrency > 0 {
		return l.BulkConcurrency
	}
	return defaultBulkConcurrency
}

func (l *Lifecycle) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
