package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"agenda/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	msgs []Message
	err  error
}

func (c *capturePublisher) Publish(ctx context.Context, msg Message) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, msg)
	return nil
}

func sampleBooking() model.Booking {
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	return model.Booking{
		ID:         "b1",
		TenantID:   "t1",
		ServiceID:  "cut",
		StaffID:    "ana",
		CustomerID: "c1",
		StartTime:  start,
		EndTime:    start.Add(30 * time.Minute),
		Status:     model.StatusPending,
		Price:      50,
	}
}

func TestBookingPublisher_BookingCreated(t *testing.T) {
	capture := &capturePublisher{}
	pub := NewBookingPublisher(capture, "agenda-wizard", "BR")
	at := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)
	pub.now = func() time.Time { return at }

	err := pub.BookingCreated(context.Background(), sampleBooking(), model.CustomerInfo{
		Name:  "Maria Silva",
		Phone: "11987654321",
	})
	require.NoError(t, err)
	require.Len(t, capture.msgs, 1)

	msg := capture.msgs[0]
	assert.Equal(t, "t1", msg.Key)
	assert.Equal(t, EventBookingCreated, msg.GetEventType())
	assert.Equal(t, "b1", msg.GetCorrelationID())

	var event BookingCreatedEvent
	require.NoError(t, msg.DecodeValue(&event))
	assert.Equal(t, msg.GetEventID(), event.EventID)
	assert.Equal(t, "+5511987654321", event.CustomerPhone)
	assert.Equal(t, "b1", event.BookingID)
	assert.Equal(t, at, event.OccurredAt)
}

func TestBookingPublisher_PropagatesFailure(t *testing.T) {
	pub := NewBookingPublisher(&capturePublisher{err: ErrProducerClosed}, "agenda-wizard", "BR")

	err := pub.BookingCreated(context.Background(), sampleBooking(), model.CustomerInfo{Name: "Maria", Phone: "11987654321"})

	assert.True(t, errors.Is(err, ErrProducerClosed))
}
