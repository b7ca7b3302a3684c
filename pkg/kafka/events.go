package kafka

import (
	"context"
	"fmt"
	"time"

	"agenda/pkg/model"
	"agenda/pkg/sanitizer"
)

const (
	EventBookingCreated = "booking.created"

	bookingSchemaVersion = "1"
)

// BookingCreatedEvent is the payload published once a booking is confirmed.
type BookingCreatedEvent struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	BookingID     string    `json:"booking_id"`
	TenantID      string    `json:"tenant_id"`
	ServiceID     string    `json:"service_id"`
	StaffID       string    `json:"staff_id"`
	CustomerID    string    `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Price         float64   `json:"price"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// BookingPublisher turns confirmed bookings into booking.created events.
// Events are keyed by tenant so one tenant's bookings stay ordered.
type BookingPublisher struct {
	producer publisher
	source   string
	region   string
	now      func() time.Time
}

func NewBookingPublisher(producer publisher, source, region string) *BookingPublisher {
	return &BookingPublisher{
		producer: producer,
		source:   source,
		region:   region,
		now:      time.Now,
	}
}

func (p *BookingPublisher) BookingCreated(ctx context.Context, booking model.Booking, customer model.CustomerInfo) error {
	phone := sanitizer.FormatE164(customer.Phone, p.region)
	if phone == "" {
		phone = sanitizer.NormalizePhone(customer.Phone)
	}

	builder := NewMessage().WithEventID("")
	event := BookingCreatedEvent{
		EventID:       builder.msg.Headers[HeaderEventID],
		Type:          EventBookingCreated,
		BookingID:     booking.ID,
		TenantID:      booking.TenantID,
		ServiceID:     booking.ServiceID,
		StaffID:       booking.StaffID,
		CustomerID:    booking.CustomerID,
		CustomerName:  customer.Name,
		CustomerPhone: phone,
		CustomerEmail: customer.Email,
		StartTime:     booking.StartTime.UTC(),
		EndTime:       booking.EndTime.UTC(),
		Price:         booking.Price,
		Status:        booking.Status,
		OccurredAt:    p.now().UTC(),
	}

	msg, err := builder.
		WithKey(booking.TenantID).
		WithValue(event).
		WithEventType(EventBookingCreated).
		WithCorrelationID(booking.ID).
		WithSchemaVersion(bookingSchemaVersion).
		WithSource(p.source).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		return err
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s for booking %s: %w", EventBookingCreated, booking.ID, err)
	}
	return nil
}
