package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentops/internal/app/dto"
	domainbooking "rentops/internal/domain/booking"
	domainproperty "rentops/internal/domain/property"
	"rentops/internal/domain/shared/daterange"
	"rentops/internal/domain/shared/events"
	"rentops/internal/domain/shared/money"
)

// CreateBooking admits a manual or imported reservation after the conflict
// check. The check and the insert run under the property lock.
func (l *Lifecycle) CreateBooking(ctx context.Context, cmd CreateBookingCommand) (dto.Booking, error) {
	if err := l.ready(); err != nil {
		return dto.Booking{}, err
	}
	dr, err := daterange.Parse(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return dto.Booking{}, domainbooking.InvalidCause("dates", err)
	}
	status := domainbooking.StatusConfirmed
	if strings.TrimSpace(cmd.Status) != "" {
		parsed, ok := domainbooking.ParseStatus(cmd.Status)
		if !ok {
			return dto.Booking{}, domainbooking.Invalid("status", "unknown status "+cmd.Status)
		}
		status = parsed
	}
	propertyID := strings.TrimSpace(cmd.PropertyID)
	if propertyID == "" {
		return dto.Booking{}, domainbooking.Invalid("property_id", "required")
	}

	if _, err := l.requireAdmin(ctx); err != nil {
		return dto.Booking{}, err
	}
	if err := l.requirePropertyAccess(ctx, propertyID); err != nil {
		return dto.Booking{}, err
	}
	prop, err := l.property(ctx, propertyID)
	if err != nil {
		return dto.Booking{}, err
	}
	rate, err := money.New(cmd.NightlyRate, prop.Currency)
	if err != nil {
		return dto.Booking{}, domainbooking.InvalidCause("nightly_rate", err)
	}
	fees, err := mapFees(cmd.Fees, prop.Currency)
	if err != nil {
		return dto.Booking{}, err
	}

	now := l.now()
	params := domainbooking.CreateParams{
		ID:         l.newID(),
		PropertyID: propertyID,
		Guest: domainbooking.GuestContact{
			Name:  strings.TrimSpace(cmd.Guest.Name),
			Email: strings.TrimSpace(cmd.Guest.Email),
			Phone: strings.TrimSpace(cmd.Guest.Phone),
		},
		Range:       dr,
		Guests:      cmd.Guests,
		Source:      domainbooking.Source(cmd.Source),
		Status:      status,
		HoldUntil:   now.Add(time.Duration(l.holdHours(cmd.HoldHours)) * time.Hour),
		NightlyRate: rate,
		Fees:        fees,
		Note:        cmd.Note,
		CreatedAt:   now,
	}

	var (
		created *domainbooking.Booking
		pending []events.DomainEvent
	)
	err = l.locks.Do(propertyID, func() error {
		b, err := domainbooking.NewBooking(params)
		if err != nil {
			return err
		}
		if err := l.checkConflict(ctx, propertyID, dr, ""); err != nil {
			return err
		}
		pending = b.Drain()
		if err := l.Bookings.Create(ctx, b); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		created = b
		return nil
	})
	if err != nil {
		return dto.Booking{}, err
	}
	l.logger().Info("booking created",
		"booking_id", created.ID,
		"property_id", created.PropertyID,
		"status", created.Status,
		"range", created.Range.String())
	l.afterCommit(ctx, created, pending)
	return dto.MapBooking(created, now), nil
}

func (l *Lifecycle) property(ctx context.Context, id string) (*domainproperty.Property, error) {
	if l.Properties == nil {
		return nil, ErrNotConfigured
	}
	prop, err := l.Properties.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainproperty.ErrPropertyNotFound) || errors.Is(err, domainbooking.ErrNotFound) {
			return nil, domainbooking.PropertyNotFound(id)
		}
		return nil, fmt.Errorf("load property %s: %w", id, err)
	}
	if !prop.Active {
		return nil, domainbooking.Invalid("property_id", "property "+id+" is not active")
	}
	return prop, nil
}

func mapFees(in []FeeInput, currency string) ([]domainbooking.Fee, error) {
	out := make([]domainbooking.Fee, 0, len(in))
	for i, fee := range in {
		name := strings.TrimSpace(fee.Name)
		if name == "" {
			return nil, domainbooking.Invalid(fmt.Sprintf("fees[%d].name", i), "required")
		}
		amount, err := money.New(fee.Amount, currency)
		if err != nil {
			return nil, domainbooking.InvalidCause(fmt.Sprintf("fees[%d].amount", i), err)
		}
		out = append(out, domainbooking.Fee{Name: name, Amount: amount})
	}
	return out, nil
}
