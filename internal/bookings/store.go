package bookings

import (
	"context"
	"fmt"
	"time"

	bookingserrors "agenda/internal/bookings/errors"
	"agenda/internal/bookings/repository"
	apperrors "agenda/pkg/errors"
	"agenda/pkg/logger"
	"agenda/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	DefaultLockTTL = 10 * time.Second

	// Any overlap is disqualifying; one match is enough to answer.
	overlapProbeLimit = 1
)

// Store is the Mongo-backed availability store. Availability is the absence
// of an overlapping pending booking; commits are serialized per (staff, start)
// through an advisory lock and re-check overlap inside a transaction.
type Store struct {
	repo    repository.BookingRepository
	locks   repository.SlotLockRepository
	lockTTL time.Duration
	log     *logger.Logger
}

func NewStore(repo repository.BookingRepository, locks repository.SlotLockRepository, lockTTL time.Duration, log *logger.Logger) *Store {
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &Store{
		repo:    repo,
		locks:   locks,
		lockTTL: lockTTL,
		log:     log,
	}
}

func (s *Store) Check(ctx context.Context, tenantID, staffID string, start, end time.Time) (bool, error) {
	if !end.After(start) {
		return false, apperrors.InvalidInput(bookingserrors.ErrInvalidTimeRange.Error())
	}
	existing, err := s.repo.FindOverlapping(ctx, tenantID, staffID, start, end, overlapProbeLimit)
	if err != nil {
		return false, apperrors.UnavailableWithCause("Booking store", err)
	}
	return len(existing) == 0, nil
}

func (s *Store) CreateBooking(ctx context.Context, req model.BookingRequest) (string, error) {
	if !req.EndTime.After(req.StartTime) {
		return "", apperrors.InvalidInput(bookingserrors.ErrInvalidTimeRange.Error())
	}

	lockID, err := s.acquireSlotLock(ctx, req.TenantID, req.StaffID, req.StartTime)
	if err != nil {
		return "", err
	}
	defer func() {
		if releaseErr := s.locks.Delete(context.WithoutCancel(ctx), lockID); releaseErr != nil {
			s.log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	booking := req.ToBooking("")
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindOverlapping(sessCtx, req.TenantID, req.StaffID, req.StartTime, req.EndTime, overlapProbeLimit)
		if err != nil {
			return apperrors.UnavailableWithCause("Booking store", err)
		}
		if len(existing) > 0 {
			return apperrors.BookingConflict(fmt.Sprintf(
				"Booking time overlaps with existing booking (%s - %s)",
				existing[0].StartTime.Format(time.RFC3339),
				existing[0].EndTime.Format(time.RFC3339),
			), bookingserrors.ErrSlotTaken)
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.UnavailableWithCause("Booking store", err)
		}
		return nil
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			err = apperrors.UnavailableWithCause("Booking store", err)
		}
		s.log.Warn("Failed to create booking",
			"tenant_id", req.TenantID,
			"staff_id", req.StaffID,
			"start_time", req.StartTime,
			"error", err,
		)
		return "", err
	}

	s.log.Info("Booking created successfully",
		"id", booking.ID,
		"tenant_id", booking.TenantID,
		"staff_id", booking.StaffID,
		"customer_id", booking.CustomerID,
		"start_time", booking.StartTime,
	)
	return booking.ID, nil
}

// acquireSlotLock fails with a booking conflict when another request holds the slot.
func (s *Store) acquireSlotLock(ctx context.Context, tenantID, staffID string, start time.Time) (string, error) {
	lockID := fmt.Sprintf("slot_lock_%s_%s_%d", tenantID, staffID, start.Unix())

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.lockTTL),
	}
	if _, err := s.locks.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.BookingConflict("This time slot is currently being booked by another request", bookingserrors.ErrSlotLocked)
		}
		return "", apperrors.UnavailableWithCause("Booking store", err)
	}
	return lockID, nil
}
