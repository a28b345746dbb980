package dto

import (
	"time"

	domainbooking "rentops/internal/domain/booking"
	"rentops/internal/domain/shared/daterange"
	"rentops/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type GuestDTO struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type FeeDTO struct {
	Name   string   `json:"name"`
	Amount MoneyDTO `json:"amount"`
}

type PricingDTO struct {
	NightlyRate MoneyDTO `json:"nightly_rate"`
	Nights      int      `json:"nights"`
	Fees        []FeeDTO `json:"fees"`
	Total       MoneyDTO `json:"total"`
}

type Booking struct {
	ID                string     `json:"id"`
	PropertyID        string     `json:"property_id"`
	Guest             GuestDTO   `json:"guest"`
	CheckIn           string     `json:"check_in"`
	CheckOut          string     `json:"check_out"`
	Nights            int        `json:"nights"`
	Guests            int        `json:"guests"`
	Source            string     `json:"source"`
	Status            string     `json:"status"`
	HoldUntil         *time.Time `json:"hold_until,omitempty"`
	HoldExpired       bool       `json:"hold_expired,omitempty"`
	ConvertedFromHold bool       `json:"converted_from_hold"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`
	Notes             string     `json:"notes"`
	Pricing           PricingDTO `json:"pricing"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Version           int64      `json:"version"`
}

type BookingCollection struct {
	Items []Booking `json:"items"`
}

type BulkFailure struct {
	BookingID string `json:"booking_id"`
	Error     string `json:"error"`
}

// BulkResult reports per-item outcomes; a batch is never atomic.
type BulkResult struct {
	SuccessCount int           `json:"success_count"`
	FailCount    int           `json:"fail_count"`
	Succeeded    []string      `json:"succeeded"`
	Failures     []BulkFailure `json:"failures"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

// MapBooking flattens a booking for transport. now drives the hold_expired flag.
func MapBooking(b *domainbooking.Booking, now time.Time) Booking {
	fees := make([]FeeDTO, 0, len(b.Pricing.Fees))
	for _, fee := range b.Pricing.Fees {
		fees = append(fees, FeeDTO{Name: fee.Name, Amount: MapMoney(fee.Amount)})
	}
	return Booking{
		ID:         string(b.ID),
		PropertyID: b.PropertyID,
		Guest: GuestDTO{
			Name:  b.Guest.Name,
			Email: b.Guest.Email,
			Phone: b.Guest.Phone,
		},
		CheckIn:           b.Range.CheckIn.Format(daterange.DayLayout),
		CheckOut:          b.Range.CheckOut.Format(daterange.DayLayout),
		Nights:            b.Range.Nights(),
		Guests:            b.Guests,
		Source:            string(b.Source),
		Status:            string(b.Status),
		HoldUntil:         copyTime(b.HoldUntil),
		HoldExpired:       b.HoldExpired(now),
		ConvertedFromHold: b.ConvertedFromHold,
		CancelledAt:       copyTime(b.CancelledAt),
		Notes:             b.Notes,
		Pricing: PricingDTO{
			NightlyRate: MapMoney(b.Pricing.NightlyRate),
			Nights:      b.Pricing.Nights,
			Fees:        fees,
			Total:       MapMoney(b.Pricing.Total),
		},
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
		Version:   b.Version,
	}
}

func MapBookings(list []*domainbooking.Booking, now time.Time) BookingCollection {
	items := make([]Booking, 0, len(list))
	for _, b := range list {
		items = append(items, MapBooking(b, now))
	}
	return BookingCollection{Items: items}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
