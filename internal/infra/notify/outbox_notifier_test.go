package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentops/internal/app/outbox"
	"rentops/internal/app/policies"
	domainbooking "rentops/internal/domain/booking"
	"rentops/internal/domain/shared/daterange"
	"rentops/internal/domain/shared/money"
)

type captureOutbox struct {
	records []outbox.EventRecord
}

func (c *captureOutbox) Add(_ context.Context, rec outbox.EventRecord) error {
	c.records = append(c.records, rec)
	return nil
}

func TestOutboxNotifier_WritesRecord(t *testing.T) {
	box := &captureOutbox{}
	n := OutboxNotifier{Outbox: box, IDGenerator: func() string { return "evt-1" }}
	dr, err := daterange.Parse("2025-06-01", "2025-06-05")
	require.NoError(t, err)
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	err = n.BookingChanged(context.Background(), policies.Notification{
		Kind: policies.NotificationCancelled,
		Booking: domainbooking.Snapshot{
			BookingID:  "bk-1",
			PropertyID: "villa-1",
			Status:     domainbooking.StatusCancelled,
			Range:      dr,
			Guest:      domainbooking.GuestContact{Name: "Ana"},
			Guests:     2,
			Total:      money.Must(48000, "EUR"),
		},
		Reason: "guest request",
		At:     at,
	})
	require.NoError(t, err)

	require.Len(t, box.records, 1)
	rec := box.records[0]
	assert.Equal(t, "evt-1", rec.ID)
	assert.Equal(t, EventName, rec.Name)
	assert.Equal(t, "bk-1", rec.Aggregate)
	assert.Equal(t, "cancelled", rec.Headers["kind"])

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Payload, &payload))
	assert.Equal(t, "2025-06-01", payload["check_in"])
	assert.Equal(t, "guest request", payload["reason"])
	assert.EqualValues(t, 48000, payload["total_amount"])
}
