package notify

import (
	"context"
	"encoding/json"
	"time"

	"rentops/internal/app/outbox"
	"rentops/internal/app/policies"
)

const EventName = "notification.booking_changed"

// OutboxNotifier turns manager notifications into outbox records. The relay
// worker delivers them to the notification topic.
type OutboxNotifier struct {
	Outbox      outbox.Outbox
	IDGenerator func() string
}

type notificationPayload struct {
	Kind       string `json:"kind"`
	BookingID  string `json:"booking_id"`
	PropertyID string `json:"property_id"`
	Status     string `json:"status"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email,omitempty"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Guests     int    `json:"guests"`
	Total      int64  `json:"total_amount"`
	Currency   string `json:"currency"`
	Reason     string `json:"reason,omitempty"`
	At         string `json:"at"`
}

func (n OutboxNotifier) BookingChanged(ctx context.Context, msg policies.Notification) error {
	b := msg.Booking
	payload, err := json.Marshal(notificationPayload{
		Kind:       msg.Kind,
		BookingID:  string(b.BookingID),
		PropertyID: b.PropertyID,
		Status:     string(b.Status),
		GuestName:  b.Guest.Name,
		GuestEmail: b.Guest.Email,
		CheckIn:    b.Range.CheckIn.Format(time.DateOnly),
		CheckOut:   b.Range.CheckOut.Format(time.DateOnly),
		Guests:     b.Guests,
		Total:      b.Total.Amount,
		Currency:   b.Total.Currency,
		Reason:     msg.Reason,
		At:         msg.At.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	rec := outbox.NewRecord(n.IDGenerator, EventName, string(b.BookingID), msg.At, payload)
	rec.Headers["kind"] = msg.Kind
	rec.Headers["property_id"] = b.PropertyID
	return n.Outbox.Add(ctx, rec)
}

var _ policies.Notifier = OutboxNotifier{}
