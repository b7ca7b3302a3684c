package wizard

import (
	"context"
	"time"

	"agenda/internal/availability"
	"agenda/pkg/model"
)

// Catalog resolves the tenant's services and staff. A vanished entry is
// reported as a NotFound AppError.
type Catalog interface {
	Service(ctx context.Context, tenantID, serviceID string) (*model.Service, error)
	Staff(ctx context.Context, tenantID, staffID string) (*model.StaffMember, error)
}

type Gateway interface {
	CheckAvailability(ctx context.Context, tenantID, staffID string, start, end time.Time) (bool, error)
	FetchSlotGrid(ctx context.Context, req availability.GridRequest) ([]model.TimeSlot, error)
}

type CustomerResolver interface {
	Resolve(ctx context.Context, tenantID, phone, name, email string) (string, error)
}

type BookingStore interface {
	CreateBooking(ctx context.Context, req model.BookingRequest) (string, error)
}

// SubmissionGuard remembers submissions by idempotency key across sessions.
type SubmissionGuard interface {
	// Claim returns the booking already recorded for key, or nil once the
	// caller owns the key. A key claimed by a submission still in flight is
	// rejected with a Busy AppError.
	Claim(ctx context.Context, key string) (*model.Booking, error)
	Complete(ctx context.Context, key string, booking model.Booking) error
	Release(ctx context.Context, key string) error
}

type EventPublisher interface {
	BookingCreated(ctx context.Context, booking model.Booking, customer model.CustomerInfo) error
}

type nopGuard struct{}

func (nopGuard) Claim(context.Context, string) (*model.Booking, error) { return nil, nil }
func (nopGuard) Complete(context.Context, string, model.Booking) error { return nil }
func (nopGuard) Release(context.Context, string) error                 { return nil }
