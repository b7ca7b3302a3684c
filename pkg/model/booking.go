package model

import (
	"time"
)

const (
	StatusPending = "pending"
)

// Booking is created only after the store accepted the reservation. It is
// never mutated by the wizard afterwards.
type Booking struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty"`
	TenantID   string    `json:"tenant_id" bson:"tenant_id" validate:"required"`
	ServiceID  string    `json:"service_id" bson:"service_id" validate:"required"`
	StaffID    string    `json:"staff_id" bson:"staff_id" validate:"required"`
	CustomerID string    `json:"customer_id" bson:"customer_id" validate:"required"`
	StartTime  time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime    time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=pending"`
	Price      float64   `json:"price" bson:"price" validate:"gte=0"`
	Notes      string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"max=500"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// BookingRequest is what the wizard hands to the availability store when it
// commits a reservation.
type BookingRequest struct {
	TenantID   string    `json:"tenant_id"`
	CustomerID string    `json:"customer_id"`
	ServiceID  string    `json:"service_id"`
	StaffID    string    `json:"staff_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Price      float64   `json:"price"`
	Notes      string    `json:"notes,omitempty"`
}

func (r BookingRequest) ToBooking(id string) *Booking {
	return &Booking{
		ID:         id,
		TenantID:   r.TenantID,
		ServiceID:  r.ServiceID,
		StaffID:    r.StaffID,
		CustomerID: r.CustomerID,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Status:     StatusPending,
		Price:      r.Price,
		Notes:      r.Notes,
	}
}
