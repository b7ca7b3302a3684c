package bookings

import (
	"context"
	"sync"
	"time"

	bookingserrors "agenda/internal/bookings/errors"
	apperrors "agenda/pkg/errors"
	"agenda/pkg/model"

	"github.com/google/uuid"
)

// MemoryStore serializes every check and commit behind one mutex. It backs
// local development and tests.
type MemoryStore struct {
	mu       sync.Mutex
	bookings []*model.Booking
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Check(ctx context.Context, tenantID, staffID string, start, end time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overlapping(tenantID, staffID, start, end) == nil, nil
}

func (m *MemoryStore) CreateBooking(ctx context.Context, req model.BookingRequest) (string, error) {
	if !req.EndTime.After(req.StartTime) {
		return "", apperrors.InvalidInput(bookingserrors.ErrInvalidTimeRange.Error())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.overlapping(req.TenantID, req.StaffID, req.StartTime, req.EndTime) != nil {
		return "", apperrors.BookingConflict("Time slot is no longer available", bookingserrors.ErrSlotTaken)
	}
	booking := req.ToBooking(uuid.NewString())
	booking.CreatedAt = time.Now().UTC()
	m.bookings = append(m.bookings, booking)
	return booking.ID, nil
}

func (m *MemoryStore) Bookings() []model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Booking, len(m.bookings))
	for i, b := range m.bookings {
		out[i] = *b
	}
	return out
}

func (m *MemoryStore) overlapping(tenantID, staffID string, start, end time.Time) *model.Booking {
	for _, b := range m.bookings {
		if b.TenantID == tenantID && b.StaffID == staffID && overlaps(b.StartTime, b.EndTime, start, end) {
			return b
		}
	}
	return nil
}

func overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && end1.After(start2)
}
