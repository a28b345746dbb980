package kafka

import (
	"context"
	"encoding/json"
	"time"

	"rentops/internal/app/policies"
	"rentops/internal/domain/shared/daterange"
)

// CalendarSync pushes block and release updates for channel managers.
type CalendarSync struct {
	Producer *Producer
	Topic    string
}

type calendarUpdateMessage struct {
	PropertyID string `json:"property_id"`
	BookingID  string `json:"booking_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Blocked    bool   `json:"blocked"`
	Firm       bool   `json:"firm"`
	At         string `json:"at"`
}

func (s CalendarSync) Push(ctx context.Context, u policies.CalendarUpdate) error {
	payload, err := json.Marshal(calendarUpdateMessage{
		PropertyID: u.PropertyID,
		BookingID:  u.BookingID,
		CheckIn:    u.Range.CheckIn.Format(daterange.DayLayout),
		CheckOut:   u.Range.CheckOut.Format(daterange.DayLayout),
		Blocked:    u.Blocked,
		Firm:       u.Firm,
		At:         u.At.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	// keyed by property so channel managers see updates in order
	return s.Producer.Publish(ctx, s.Topic, u.PropertyID, payload, map[string]string{
		"content-type": "application/json",
	})
}

var _ policies.CalendarSync = CalendarSync{}
