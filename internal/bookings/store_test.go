package bookings

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	bookingserrors "agenda/internal/bookings/errors"
	mongotx "agenda/pkg/db/mongo"
	apperrors "agenda/pkg/errors"
	"agenda/pkg/logger"
	"agenda/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

type mockBookingRepository struct {
	createFunc          func(ctx context.Context, booking *model.Booking) error
	findOverlappingFunc func(ctx context.Context, tenantID, staffID string, start, end time.Time, limit int) ([]*model.Booking, error)
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = "booking-1"
	return nil
}

func (m *mockBookingRepository) FindOverlapping(ctx context.Context, tenantID, staffID string, start, end time.Time, limit int) ([]*model.Booking, error) {
	if m.findOverlappingFunc != nil {
		return m.findOverlappingFunc(ctx, tenantID, staffID, start, end, limit)
	}
	return nil, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockSlotLockRepository struct {
	mu      sync.Mutex
	held    map[string]bool
	deleted []string
	err     error
}

func (m *mockSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.held == nil {
		m.held = map[string]bool{}
	}
	if m.held[lock.ID] {
		return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "duplicate key"}}}
	}
	m.held[lock.ID] = true
	return lock, nil
}

func (m *mockSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, lockID)
	m.deleted = append(m.deleted, lockID)
	return nil
}

var nine = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func request() model.BookingRequest {
	return model.BookingRequest{
		TenantID:   "t1",
		CustomerID: "c1",
		ServiceID:  "cut",
		StaffID:    "ana",
		StartTime:  nine,
		EndTime:    nine.Add(30 * time.Minute),
		Price:      80,
	}
}

func TestStore_Check(t *testing.T) {
	var gotLimit int
	repo := &mockBookingRepository{
		findOverlappingFunc: func(ctx context.Context, tenantID, staffID string, start, end time.Time, limit int) ([]*model.Booking, error) {
			gotLimit = limit
			if start.Equal(nine) {
				return []*model.Booking{{ID: "b1", StartTime: nine, EndTime: nine.Add(time.Hour)}}, nil
			}
			return nil, nil
		},
	}
	s := NewStore(repo, &mockSlotLockRepository{}, 0, logger.Discard())

	free, err := s.Check(context.Background(), "t1", "ana", nine, nine.Add(30*time.Minute))
	require.NoError(t, err)
	assert.False(t, free)
	assert.Equal(t, 1, gotLimit)

	free, err = s.Check(context.Background(), "t1", "ana", nine.Add(time.Hour), nine.Add(90*time.Minute))
	require.NoError(t, err)
	assert.True(t, free)
}

func TestStore_CheckStoreFailureIsTransient(t *testing.T) {
	repo := &mockBookingRepository{
		findOverlappingFunc: func(ctx context.Context, tenantID, staffID string, start, end time.Time, limit int) ([]*model.Booking, error) {
			return nil, errors.New("server selection timeout")
		},
	}
	s := NewStore(repo, &mockSlotLockRepository{}, time.Second, logger.Discard())

	_, err := s.Check(context.Background(), "t1", "ana", nine, nine.Add(30*time.Minute))
	assert.True(t, apperrors.IsTransient(err))
}

func TestStore_CreateBooking(t *testing.T) {
	locks := &mockSlotLockRepository{}
	var created *model.Booking
	repo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			booking.ID = "booking-42"
			created = booking
			return nil
		},
	}
	s := NewStore(repo, locks, time.Second, logger.Discard())

	id, err := s.CreateBooking(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, "booking-42", id)
	require.NotNil(t, created)
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Equal(t, "c1", created.CustomerID)
	assert.Equal(t, []string{"slot_lock_t1_ana_" + itoa(nine.Unix())}, locks.deleted, "lock released after commit")
}

func TestStore_CreateBookingOverlapIsConflict(t *testing.T) {
	locks := &mockSlotLockRepository{}
	repo := &mockBookingRepository{
		findOverlappingFunc: func(ctx context.Context, tenantID, staffID string, start, end time.Time, limit int) ([]*model.Booking, error) {
			return []*model.Booking{{ID: "b0", StartTime: nine, EndTime: nine.Add(time.Hour)}}, nil
		},
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			t.Fatal("create must not run when the slot is taken")
			return nil
		},
	}
	s := NewStore(repo, locks, time.Second, logger.Discard())

	_, err := s.CreateBooking(context.Background(), request())
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.ErrorIs(t, err, bookingserrors.ErrSlotTaken)
	assert.Len(t, locks.deleted, 1, "lock released after conflict")
}

func TestStore_CreateBookingHeldLockIsConflict(t *testing.T) {
	locks := &mockSlotLockRepository{held: map[string]bool{"slot_lock_t1_ana_" + itoa(nine.Unix()): true}}
	s := NewStore(&mockBookingRepository{}, locks, time.Second, logger.Discard())

	_, err := s.CreateBooking(context.Background(), request())
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.ErrorIs(t, err, bookingserrors.ErrSlotLocked)
	assert.Empty(t, locks.deleted, "a lock we never acquired is not released")
}

func TestStore_CreateBookingLockStoreDown(t *testing.T) {
	locks := &mockSlotLockRepository{err: errors.New("no reachable servers")}
	s := NewStore(&mockBookingRepository{}, locks, time.Second, logger.Discard())

	_, err := s.CreateBooking(context.Background(), request())
	assert.True(t, apperrors.IsTransient(err))
}

func TestStore_CreateBookingInvalidRange(t *testing.T) {
	s := NewStore(&mockBookingRepository{}, &mockSlotLockRepository{}, time.Second, logger.Discard())
	req := request()
	req.EndTime = req.StartTime

	_, err := s.CreateBooking(context.Background(), req)
	assert.True(t, apperrors.IsValidation(err))
}

func TestMemoryStore_SerializesCommits(t *testing.T) {
	m := NewMemoryStore()
	var wg sync.WaitGroup
	results := make([]error, 10)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = m.CreateBooking(context.Background(), request())
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperrors.IsConflict(err))
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, m.Bookings(), 1)

	free, err := m.Check(context.Background(), "t1", "ana", nine.Add(15*time.Minute), nine.Add(45*time.Minute))
	require.NoError(t, err)
	assert.False(t, free, "overlapping interval is taken")

	free, err = m.Check(context.Background(), "t1", "ana", nine.Add(30*time.Minute), nine.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, free, "adjacent interval is free")
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
