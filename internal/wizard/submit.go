package wizard

import (
	"context"
	"fmt"
	"time"

	bookingserrors "agenda/internal/bookings/errors"
	"agenda/internal/wizard/flow"
	apperrors "agenda/pkg/errors"
	"agenda/pkg/model"
	"agenda/pkg/retry"
)

const (
	submitFlow    = "submit-booking"
	submitTimeout = time.Minute
)

// submission is the state threaded through the submit-booking flow.
type submission struct {
	TenantID   string
	Key        string
	Service    model.Service
	Slot       model.TimeSlot
	Customer   model.CustomerInfo
	CustomerID string
	Booking    *model.Booking
}

func (s *Service) buildEngine() *flow.Engine[submission] {
	return flow.NewEngine(s.log, flow.New(submitFlow,
		flow.NewStep("revalidate", s.revalidate),
		flow.NewStep("resolve-customer", s.resolveCustomer),
		flow.NewStep("create-booking", s.createBooking),
	))
}

// SubmissionKey derives the idempotency key used when the client sends none.
func SubmissionKey(tenantID string, slot model.TimeSlot, phone string) string {
	return fmt.Sprintf("submission:%s:%s:%s:%s",
		tenantID, slot.StaffID, slot.StartTime.UTC().Format(time.RFC3339), phone)
}

type submitResult struct {
	booking *model.Booking
	err     error
}

// submit starts committing one booking and returns where its outcome will
// be delivered. The work runs detached from ctx, bounded by submitTimeout,
// so the guard always records what really happened even when the caller
// stops waiting.
func (s *Service) submit(ctx context.Context, sub *submission) <-chan submitResult {
	done := make(chan submitResult, 1)
	go func() {
		detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), submitTimeout)
		defer cancel()
		booking, err := s.settle(detached, sub)
		done <- submitResult{booking: booking, err: err}
	}()
	return done
}

// settle runs the flow under the guard. A key already completed replays the
// recorded booking instead of running the flow again.
func (s *Service) settle(ctx context.Context, sub *submission) (*model.Booking, error) {
	existing, err := s.guard.Claim(ctx, sub.Key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.log.Info("Duplicate submission replayed", "key", sub.Key, "booking_id", existing.ID)
		return existing, nil
	}

	if err := s.engine.Run(ctx, submitFlow, sub); err != nil {
		if releaseErr := s.guard.Release(ctx, sub.Key); releaseErr != nil {
			s.log.Warn("Failed to release submission key", "key", sub.Key, "error", releaseErr)
		}
		return nil, err
	}

	if err := s.guard.Complete(ctx, sub.Key, *sub.Booking); err != nil {
		s.log.Warn("Failed to record submission", "key", sub.Key, "booking_id", sub.Booking.ID, "error", err)
	}
	if s.publisher != nil {
		if err := s.publisher.BookingCreated(ctx, *sub.Booking, sub.Customer); err != nil {
			s.log.Error("Failed to publish booking event", "booking_id", sub.Booking.ID, "error", err)
		}
	}
	return sub.Booking, nil
}

// revalidate re-checks the exact interval right before committing; the grid
// the slot came from may be minutes old.
func (s *Service) revalidate(ctx context.Context, sub *submission) error {
	free, err := s.gateway.CheckAvailability(ctx, sub.TenantID, sub.Slot.StaffID, sub.Slot.StartTime, sub.Slot.EndTime)
	if err != nil {
		return err
	}
	if !free {
		return apperrors.BookingConflict("The selected time is no longer available", bookingserrors.ErrSlotTaken)
	}
	return nil
}

// resolveCustomer is not collapsed by key: Resolve upserts on the natural
// key, and every caller's name and email must reach the store.
func (s *Service) resolveCustomer(ctx context.Context, sub *submission) error {
	id, err := retry.Execute(ctx, s.retry, "", func(ctx context.Context) (string, error) {
		return s.customers.Resolve(ctx, sub.TenantID, sub.Customer.Phone, sub.Customer.Name, sub.Customer.Email)
	})
	if err != nil {
		return err
	}
	sub.CustomerID = id
	return nil
}

func (s *Service) createBooking(ctx context.Context, sub *submission) error {
	req := model.BookingRequest{
		TenantID:   sub.TenantID,
		CustomerID: sub.CustomerID,
		ServiceID:  sub.Service.ID,
		StaffID:    sub.Slot.StaffID,
		StartTime:  sub.Slot.StartTime,
		EndTime:    sub.Slot.EndTime,
		Price:      sub.Service.Price,
		Notes:      sub.Customer.Notes,
	}
	id, err := retry.Execute(ctx, s.retry, "booking:"+sub.Key, func(ctx context.Context) (string, error) {
		return s.store.CreateBooking(ctx, req)
	})
	if err != nil {
		return err
	}
	booking := req.ToBooking(id)
	booking.CreatedAt = s.cfg.Now().UTC()
	sub.Booking = booking
	return nil
}
