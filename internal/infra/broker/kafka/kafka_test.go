package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	availabilityapp "rentops/internal/app/handlers/availability"
	"rentops/internal/app/policies"
	domainbooking "rentops/internal/domain/booking"
	"rentops/internal/domain/shared/daterange"
)

func TestCalendarSync_PublishesKeyedByProperty(t *testing.T) {
	mp := mocks.NewSyncProducer(t, nil)
	mp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "dev.calendar.sync.v1" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "villa-1" {
			return errors.New("unexpected key " + string(key))
		}
		return nil
	})
	sync := CalendarSync{Producer: NewProducerFrom(mp), Topic: "dev.calendar.sync.v1"}
	dr, err := daterange.Parse("2025-06-01", "2025-06-05")
	require.NoError(t, err)

	err = sync.Push(context.Background(), policies.CalendarUpdate{
		PropertyID: "villa-1",
		BookingID:  "bk-1",
		Range:      dr,
		Blocked:    true,
		Firm:       true,
		At:         time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, mp.Close())
}

func TestProducer_PropagatesBrokerErrors(t *testing.T) {
	mp := mocks.NewSyncProducer(t, nil)
	mp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	p := NewProducerFrom(mp)

	err := p.Publish(context.Background(), "topic", "key", []byte(`{}`), nil)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

type feedRecorder struct {
	events []availabilityapp.FeedEvent
	err    error
}

func (f *feedRecorder) ApplyFeedEvent(_ context.Context, ev availabilityapp.FeedEvent) error {
	f.events = append(f.events, ev)
	return f.err
}

func TestFeedHandler(t *testing.T) {
	rec := &feedRecorder{}
	h := FeedHandler{Feed: rec}
	ctx := context.Background()

	payload, err := json.Marshal(availabilityapp.FeedEvent{PropertyID: "villa-1", Ref: "ical-7", CheckIn: "2025-07-01", CheckOut: "2025-07-03"})
	require.NoError(t, err)
	msg := &sarama.ConsumerMessage{
		Value:   payload,
		Headers: []*sarama.RecordHeader{{Key: []byte("ce_id"), Value: []byte("evt-1")}},
	}
	require.NoError(t, h.Handle(ctx, msg))
	require.Len(t, rec.events, 1)
	assert.Equal(t, "evt-1", rec.events[0].EventID)

	assert.NoError(t, h.Handle(ctx, &sarama.ConsumerMessage{Value: []byte("not json")}), "garbage is dropped")

	rec.err = domainbooking.Invalid("dates", "bad")
	assert.NoError(t, h.Handle(ctx, msg), "invalid events are dropped")

	rec.err = errors.New("ledger unavailable")
	assert.Error(t, h.Handle(ctx, msg), "infrastructure errors are retried")
}
