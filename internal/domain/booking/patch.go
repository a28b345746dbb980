package booking

import (
	"strings"
	"time"

	"rentops/internal/domain/shared/daterange"
	"rentops/internal/domain/shared/money"
)

// Patch lists the mutable fields of a booking. Nil fields are left as is.
type Patch struct {
	Range       *daterange.DateRange
	Guests      *int
	Guest       *GuestContact
	NightlyRate *money.Money
	Fees        *[]Fee
	Note        string
}

func (p Patch) Empty() bool {
	return p.Range == nil && p.Guests == nil && p.Guest == nil && p.NightlyRate == nil && p.Fees == nil && strings.TrimSpace(p.Note) == ""
}

// ApplyPatch assigns the patched fields. Date, rate or fee changes reprice
// the snapshot before anything is assigned, so a failed reprice leaves the
// booking untouched and DatesChanged carries the new totals.
func (b *Booking) ApplyPatch(p Patch, now time.Time) (bool, error) {
	if !b.Status.Editable() {
		return false, b.illegal(ActionEdit, "")
	}
	if p.Empty() {
		return false, Invalid("patch", "no fields to update")
	}
	if p.Range != nil {
		if err := validateStay(*p.Range); err != nil {
			return false, err
		}
	}
	if p.Guests != nil && *p.Guests <= 0 {
		return false, Invalid("guests", "must be positive")
	}
	if p.Guest != nil && strings.TrimSpace(p.Guest.Name) == "" {
		return false, Invalid("guest.name", "required")
	}
	if p.NightlyRate != nil && p.NightlyRate.Currency != b.Pricing.Currency() {
		return false, Invalid("nightly_rate", "currency must stay "+b.Pricing.Currency())
	}

	datesChanged := p.Range != nil && (!p.Range.CheckIn.Equal(b.Range.CheckIn) || !p.Range.CheckOut.Equal(b.Range.CheckOut))
	pricing := b.Pricing.Copy()
	if datesChanged {
		pricing.Nights = p.Range.Nights()
	}
	if p.NightlyRate != nil {
		pricing.NightlyRate = *p.NightlyRate
	}
	if p.Fees != nil {
		pricing.Fees = append([]Fee(nil), (*p.Fees)...)
	}
	if datesChanged || p.NightlyRate != nil || p.Fees != nil {
		if err := pricing.Recalculate(); err != nil {
			return false, asValidation("pricing", err)
		}
	}

	now = now.UTC()
	var changes []string
	previous := b.Range
	if datesChanged {
		b.Range = *p.Range
		changes = append(changes, "dates "+previous.String()+" -> "+b.Range.String())
	}
	if p.Guests != nil && *p.Guests != b.Guests {
		b.Guests = *p.Guests
		changes = append(changes, "guests")
	}
	if p.Guest != nil {
		b.Guest = *p.Guest
		changes = append(changes, "guest contact")
	}
	if p.NightlyRate != nil {
		changes = append(changes, "nightly rate")
	}
	if p.Fees != nil {
		changes = append(changes, "fees")
	}
	b.Pricing = pricing
	if len(changes) > 0 {
		b.AppendNote(now, "updated "+strings.Join(changes, ", "))
	}
	b.AppendNote(now, p.Note)
	b.UpdatedAt = now
	if datesChanged {
		b.Record(DatesChanged{Booking: b.Snapshot(), Previous: previous, At: now})
	}
	return datesChanged, nil
}
