package memory

import (
	"context"
	"sync"

	"rentops/internal/app/policies"
	domainbooking "rentops/internal/domain/booking"
	"rentops/internal/domain/shared/money"
)

// GuestRecord aggregates a guest's bookings.
type GuestRecord struct {
	Key           string
	Name          string
	Email         string
	Phone         string
	TotalBookings int
	TotalSpent    map[string]int64
	BookingIDs    []string
}

// contribution is what one booking added to a guest record.
type contribution struct {
	guestKey string
	total    money.Money
}

type GuestCRM struct {
	mu            sync.Mutex
	guests        map[string]*GuestRecord
	contributions map[domainbooking.BookingID]contribution
}

func NewGuestCRM() *GuestCRM {
	return &GuestCRM{
		guests:        make(map[string]*GuestRecord),
		contributions: make(map[domainbooking.BookingID]contribution),
	}
}

// UpsertFromBooking counts a booking once per booking id.
func (c *GuestCRM) UpsertFromBooking(ctx context.Context, b domainbooking.Snapshot) error {
	key := b.Guest.Key()
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, counted := c.contributions[b.BookingID]; counted {
		return nil
	}
	rec, ok := c.guests[key]
	if !ok {
		rec = &GuestRecord{Key: key, TotalSpent: map[string]int64{}}
		c.guests[key] = rec
	}
	rec.Name, rec.Email, rec.Phone = b.Guest.Name, b.Guest.Email, b.Guest.Phone
	rec.BookingIDs = append(rec.BookingIDs, string(b.BookingID))
	rec.TotalBookings++
	rec.TotalSpent[b.Total.Currency] += b.Total.Amount
	c.contributions[b.BookingID] = contribution{guestKey: key, total: b.Total}
	return nil
}

// ReverseBooking undoes exactly what UpsertFromBooking added for the booking,
// whatever its current contact or total. Unknown bookings are ignored.
func (c *GuestCRM) ReverseBooking(ctx context.Context, b domainbooking.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	added, ok := c.contributions[b.BookingID]
	if !ok {
		return nil
	}
	delete(c.contributions, b.BookingID)
	rec, ok := c.guests[added.guestKey]
	if !ok {
		return nil
	}
	idx := -1
	for i, id := range rec.BookingIDs {
		if id == string(b.BookingID) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	rec.BookingIDs = append(rec.BookingIDs[:idx], rec.BookingIDs[idx+1:]...)
	rec.TotalBookings--
	rec.TotalSpent[added.total.Currency] -= added.total.Amount
	return nil
}

func (c *GuestCRM) Guest(key string) (GuestRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.guests[key]
	if !ok {
		return GuestRecord{}, false
	}
	out := *rec
	out.BookingIDs = append([]string(nil), rec.BookingIDs...)
	out.TotalSpent = make(map[string]int64, len(rec.TotalSpent))
	for k, v := range rec.TotalSpent {
		out.TotalSpent[k] = v
	}
	return out, true
}

var _ policies.GuestCRM = (*GuestCRM)(nil)
