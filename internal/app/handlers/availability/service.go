package availability

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rentops/internal/app/outbox"
	"rentops/internal/app/policies"
	domainavailability "rentops/internal/domain/availability"
	domainbooking "rentops/internal/domain/booking"
	"rentops/internal/domain/shared/events"
)

// maxCalendarDays bounds a single calendar read.
const maxCalendarDays = 400

// Inbox deduplicates feed deliveries by event id.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// Service serves the calendar view and the operations that touch the ledger
// outside the booking lifecycle: feed blocks and reconciliation.
type Service struct {
	Ledger   domainavailability.Ledger
	Bookings domainbooking.Repository
	Auth     policies.Authorizer
	Inbox    Inbox
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Logger   *slog.Logger
	Clock    func() time.Time
}

var ErrNotConfigured = errors.New("availability: service missing dependencies")

func (s *Service) ready() error {
	if s == nil || s.Ledger == nil {
		return ErrNotConfigured
	}
	return nil
}

func (s *Service) requirePropertyAccess(ctx context.Context, propertyID string) error {
	if s.Auth == nil {
		return ErrNotConfigured
	}
	if err := s.Auth.RequirePropertyAccess(ctx, propertyID); err != nil {
		if errors.Is(err, domainbooking.ErrUnauthorized) {
			return err
		}
		return &domainbooking.AuthorizationError{PropertyID: propertyID, Reason: err.Error()}
	}
	return nil
}

// publish records ledger events for relay. Failures are logged only.
func (s *Service) publish(ctx context.Context, evs ...events.DomainEvent) {
	if s.Outbox == nil {
		return
	}
	if err := outbox.RecordDomainEvents(context.WithoutCancel(ctx), s.Outbox, s.Encoder, evs); err != nil {
		s.logger().Warn("availability event not recorded", "error", err)
	}
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
