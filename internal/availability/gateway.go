package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "agenda/pkg/errors"
	"agenda/pkg/logger"
	"agenda/pkg/model"
	"agenda/pkg/retry"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWorkStart           = "08:00"
	DefaultWorkEnd             = "18:00"
	DefaultStepMin             = 30
	DefaultMaxConcurrentChecks = 10

	timeOfDayLayout = "15:04"
)

// Store is the external scheduling store. It must behave as if serialized per
// (staff, interval): two callers can never both book an interval it reported free.
type Store interface {
	Check(ctx context.Context, tenantID, staffID string, start, end time.Time) (bool, error)
	CreateBooking(ctx context.Context, req model.BookingRequest) (string, error)
}

type GridRequest struct {
	TenantID           string    `validate:"required"`
	StaffID            string    `validate:"required"`
	Date               time.Time `validate:"required"`
	ServiceDurationMin int       `validate:"gt=0"`
	WorkStart          string    `validate:"omitempty,time_of_day"`
	WorkEnd            string    `validate:"omitempty,time_of_day"`
	StepMin            int       `validate:"gte=0"`
}

type Gateway struct {
	store         Store
	retry         *retry.Executor
	validate      *validator.Validate
	maxConcurrent int
	log           *logger.Logger
}

type Option func(*Gateway)

func WithMaxConcurrentChecks(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.maxConcurrent = n
		}
	}
}

func NewGateway(store Store, executor *retry.Executor, log *logger.Logger, opts ...Option) *Gateway {
	v := validator.New()
	if err := v.RegisterValidation("time_of_day", validateTimeOfDay); err != nil {
		log.Fatal("Failed to register 'time_of_day' validator", "error", err)
	}
	g := &Gateway{
		store:         store,
		retry:         executor,
		validate:      v,
		maxConcurrent: DefaultMaxConcurrentChecks,
		log:           log,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	_, err := time.Parse(timeOfDayLayout, fl.Field().String())
	return err == nil
}

// CheckAvailability asks the store whether exactly [start, end) is free for staffID.
func (g *Gateway) CheckAvailability(ctx context.Context, tenantID, staffID string, start, end time.Time) (bool, error) {
	if tenantID == "" || staffID == "" {
		return false, apperrors.InvalidInput("tenant and staff are required")
	}
	if !end.After(start) {
		return false, apperrors.InvalidInput("end time must be after start time")
	}
	return retry.Execute(ctx, g.retry, CheckKey(tenantID, staffID, start, end), func(ctx context.Context) (bool, error) {
		return g.store.Check(ctx, tenantID, staffID, start, end)
	})
}

// FetchSlotGrid builds every step-aligned slot of the work day and checks each
// one in parallel. The result is ordered by start time. A slot whose check
// exhausts its retries is reported unavailable; only when every check fails
// does the fetch itself fail.
func (g *Gateway) FetchSlotGrid(ctx context.Context, req GridRequest) ([]model.TimeSlot, error) {
	slots, err := g.buildGrid(req)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return slots, nil
	}

	failures := make([]error, len(slots))
	var group errgroup.Group
	group.SetLimit(g.maxConcurrent)

	for i := range slots {
		group.Go(func() error {
			slot := slots[i]
			free, err := retry.Execute(ctx, g.retry, CheckKey(req.TenantID, req.StaffID, slot.StartTime, slot.EndTime), func(ctx context.Context) (bool, error) {
				return g.store.Check(ctx, req.TenantID, req.StaffID, slot.StartTime, slot.EndTime)
			})
			if err != nil {
				failures[i] = err
				return nil
			}
			slots[i].IsAvailable = free
			return nil
		})
	}
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failed, notFound := 0, 0
	var lastErr error
	for _, err := range failures {
		if err != nil {
			failed++
			lastErr = err
			if apperrors.IsNotFound(err) {
				notFound++
			}
		}
	}
	if notFound == len(slots) {
		g.log.Warn("Availability store does not know the tenant or staff",
			"tenant_id", req.TenantID,
			"staff_id", req.StaffID,
			"error", lastErr,
		)
		return nil, lastErr
	}
	if failed == len(slots) {
		g.log.Error("Every availability check failed",
			"tenant_id", req.TenantID,
			"staff_id", req.StaffID,
			"date", req.Date.Format(time.DateOnly),
			"slots", len(slots),
			"error", lastErr,
		)
		return nil, apperrors.UnavailableWithCause("Availability service", lastErr)
	}
	if failed > 0 {
		g.log.Warn("Slot grid partially degraded",
			"tenant_id", req.TenantID,
			"staff_id", req.StaffID,
			"failed", failed,
			"slots", len(slots),
		)
	}

	g.log.Debug("Slot grid fetched",
		"tenant_id", req.TenantID,
		"staff_id", req.StaffID,
		"date", req.Date.Format(time.DateOnly),
		"slots", len(slots),
	)
	return slots, nil
}

func (g *Gateway) buildGrid(req GridRequest) ([]model.TimeSlot, error) {
	if err := g.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			fields := map[string]any{}
			for _, fe := range validationErrs {
				fields[fe.Field()] = fe.Tag()
			}
			return nil, apperrors.Validation("Invalid slot grid request", fields)
		}
		return nil, apperrors.Validation("Invalid slot grid request", map[string]any{"error": err.Error()})
	}

	workStart := orDefault(req.WorkStart, DefaultWorkStart)
	workEnd := orDefault(req.WorkEnd, DefaultWorkEnd)
	step := req.StepMin
	if step == 0 {
		step = DefaultStepMin
	}

	from, err := atTimeOfDay(req.Date, workStart)
	if err != nil {
		return nil, apperrors.Validation("Invalid work start", map[string]any{"work_start": workStart})
	}
	until, err := atTimeOfDay(req.Date, workEnd)
	if err != nil {
		return nil, apperrors.Validation("Invalid work end", map[string]any{"work_end": workEnd})
	}
	if !until.After(from) {
		return nil, apperrors.Validation("Work day must end after it starts", map[string]any{
			"work_start": workStart,
			"work_end":   workEnd,
		})
	}

	duration := time.Duration(req.ServiceDurationMin) * time.Minute
	stepDur := time.Duration(step) * time.Minute

	var slots []model.TimeSlot
	for start := from; start.Before(until); start = start.Add(stepDur) {
		slots = append(slots, model.NewTimeSlot(req.StaffID, start, duration))
	}
	return slots, nil
}

// CheckKey is the idempotency key for one availability check.
func CheckKey(tenantID, staffID string, start, end time.Time) string {
	return fmt.Sprintf("availability:%s:%s:%s:%s",
		tenantID, staffID,
		start.UTC().Format(time.RFC3339),
		end.UTC().Format(time.RFC3339),
	)
}

func atTimeOfDay(day time.Time, hhmm string) (time.Time, error) {
	tod, err := time.Parse(timeOfDayLayout, hhmm)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, tod.Hour(), tod.Minute(), 0, 0, day.Location()), nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
