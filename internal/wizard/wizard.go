package wizard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"agenda/internal/availability"
	apperrors "agenda/pkg/errors"
	"agenda/pkg/logger"
	"agenda/pkg/model"
)

// Wizard is one booking session. Events are applied one at a time; the lock
// is released only while a grid fetch or a submission is in flight, and a
// fetch result is applied only if no newer event invalidated it meanwhile.
type Wizard struct {
	id       string
	tenantID string
	svc      *Service
	log      *logger.Logger

	mu      sync.Mutex
	state   State
	service *model.Service
	// token changes on every staff, date, service or step change; a fetch
	// that returns under a different token is discarded.
	token             uint64
	lastDateTimeStaff string
	// retry is the last transiently failed action, valid only while the
	// wizard is still at retryStep and no other event has been applied.
	retry     func(ctx context.Context) error
	retryStep Step
	// pending is a submission whose caller gave up before it settled.
	pending *pendingSubmission
	// lastActive is read by the registry sweeper without taking mu.
	lastActive atomic.Int64
}

type pendingSubmission struct {
	key  string
	slot model.TimeSlot
	done <-chan submitResult
}

func (w *Wizard) ID() string {
	return w.id
}

func (w *Wizard) TenantID() string {
	return w.tenantID
}

func (w *Wizard) LastActive() time.Time {
	return time.Unix(0, w.lastActive.Load())
}

func (w *Wizard) touch() {
	w.lastActive.Store(w.svc.cfg.Now().UnixNano())
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.clone()
}

// Dispatch applies ev and returns the resulting state. The returned error is
// the one recorded on the state, except for events rejected while a
// submission is outstanding, which leave the state untouched.
func (w *Wizard) Dispatch(ctx context.Context, ev Event) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.touch()
	if w.state.Busy == BusySubmitting {
		return w.state.clone(), apperrors.Busy("A booking submission is already in progress")
	}

	if _, isRetry := ev.(Retry); !isRetry {
		w.retry = nil
	}
	w.state.Error = nil
	if err := w.handle(ctx, ev); err != nil {
		appErr := w.fail(err)
		w.log.Debug("Wizard event failed", "event", ev.Name(), "step", w.state.Step, "error", err)
		return w.state.clone(), appErr
	}
	w.log.Debug("Wizard event applied", "event", ev.Name(), "step", w.state.Step)
	return w.state.clone(), nil
}

func (w *Wizard) handle(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case SelectService:
		return w.selectService(ctx, e.ServiceID)
	case SelectStaff:
		return w.selectStaff(ctx, e.StaffID)
	case SelectDate:
		return w.selectDate(ctx, e.Date)
	case SelectSlot:
		return w.selectSlot(e.StartTime)
	case SubmitCustomerInfo:
		return w.submitCustomerInfo(ctx, e.Info, e.IdempotencyKey)
	case ApplyAlternative:
		return w.applyAlternative(e.StartTime)
	case Next:
		return w.next(ctx)
	case Back:
		return w.back(ctx)
	case Reset:
		w.reset()
		return nil
	case Retry:
		if w.retry == nil || w.retryStep != w.state.Step {
			w.retry = nil
			return nil
		}
		return w.run(ctx, w.retry)
	default:
		return apperrors.InvalidInput("unsupported event")
	}
}

// fail records err on the state. A vanished tenant, service or staff ends
// the session's progress.
func (w *Wizard) fail(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		appErr = apperrors.Timeout("The request was interrupted, please try again")
		appErr.Err = err
	default:
		appErr = apperrors.UnavailableWithCause("Booking service", err)
	}
	if appErr.Kind() == apperrors.KindNotFound {
		w.log.Warn("Selection vanished, restarting session", "error", err)
		w.reset()
	}
	w.state.Error = appErr
	return appErr
}

// run executes a network-bound action and remembers it for Retry when it
// fails transiently.
func (w *Wizard) run(ctx context.Context, action func(ctx context.Context) error) error {
	w.retry = nil
	err := action(ctx)
	if err != nil && apperrors.IsTransient(err) {
		w.remember(action)
	}
	return err
}

func (w *Wizard) remember(action func(ctx context.Context) error) {
	w.retry = action
	w.retryStep = w.state.Step
}

// invalidate discards any grid fetch still in flight.
func (w *Wizard) invalidate() {
	w.token++
	if w.state.Busy == BusyChecking {
		w.state.Busy = BusyIdle
	}
}

func (w *Wizard) requireStep(steps ...Step) error {
	for _, s := range steps {
		if w.state.Step == s {
			return nil
		}
	}
	return apperrors.Validation("Action not allowed at this step", map[string]any{"step": w.state.Step})
}

func (w *Wizard) selectService(ctx context.Context, serviceID string) error {
	if err := w.requireStep(StepServices); err != nil {
		return err
	}
	if serviceID == "" {
		return apperrors.Validation("Service is required", map[string]any{"field": "service_id"})
	}
	if serviceID == w.state.Selection.ServiceID {
		return nil
	}
	service, err := w.svc.catalog.Service(ctx, w.tenantID, serviceID)
	if err != nil {
		return err
	}

	w.invalidate()
	w.service = service
	w.state.Selection.ServiceID = serviceID
	w.clearStaff()
	return nil
}

func (w *Wizard) selectStaff(ctx context.Context, staffID string) error {
	if err := w.requireStep(StepStaff, StepDateTime); err != nil {
		return err
	}
	if staffID == "" {
		return apperrors.Validation("Staff is required", map[string]any{"field": "staff_id"})
	}
	if staffID == w.state.Selection.StaffID {
		return nil
	}
	if _, err := w.svc.catalog.Staff(ctx, w.tenantID, staffID); err != nil {
		return err
	}

	w.invalidate()
	w.state.Selection.StaffID = staffID
	w.state.Selection.Slot = nil
	w.state.Grid = nil
	w.state.Alternatives = nil
	if w.state.Step != StepDateTime {
		return nil
	}
	return w.run(ctx, w.refreshGrid)
}

func (w *Wizard) selectDate(ctx context.Context, date time.Time) error {
	if err := w.requireStep(StepDateTime); err != nil {
		return err
	}
	if date.IsZero() {
		return apperrors.Validation("Date is required", map[string]any{"field": "date"})
	}
	day := model.DayOf(date.In(w.svc.cfg.Location))
	if day.Equal(w.state.Selection.Date) {
		return nil
	}

	w.invalidate()
	w.state.Selection.Date = day
	w.state.Selection.Slot = nil
	w.state.Grid = nil
	w.state.Alternatives = nil
	return w.run(ctx, w.refreshGrid)
}

func (w *Wizard) selectSlot(start time.Time) error {
	if err := w.requireStep(StepDateTime); err != nil {
		return err
	}
	slot, ok := w.findSlot(start)
	if !ok {
		return apperrors.Validation("Unknown time slot", map[string]any{"start_time": start})
	}
	if !slot.IsAvailable {
		return apperrors.Validation("Time slot is not available", map[string]any{"start_time": start})
	}
	w.state.Selection.Slot = &slot
	w.state.Alternatives = nil
	return nil
}

func (w *Wizard) applyAlternative(start time.Time) error {
	if err := w.requireStep(StepDateTime); err != nil {
		return err
	}
	for _, alt := range w.state.Alternatives {
		if alt.StartTime.Equal(start) {
			w.invalidate()
			w.state.Selection.Slot = &alt
			w.state.Alternatives = nil
			w.state.Step = StepCustomer
			return nil
		}
	}
	return apperrors.Validation("Not one of the proposed alternatives", map[string]any{"start_time": start})
}

func (w *Wizard) next(ctx context.Context) error {
	sel := &w.state.Selection
	switch w.state.Step {
	case StepServices:
		if sel.ServiceID == "" {
			return apperrors.Validation("Select a service to continue", map[string]any{"field": "service_id"})
		}
		w.invalidate()
		w.clearStaff()
		w.state.Step = StepStaff
		return nil

	case StepStaff:
		if sel.StaffID == "" {
			return apperrors.Validation("Select a professional to continue", map[string]any{"field": "staff_id"})
		}
		return w.run(ctx, w.enterDateTime)

	case StepDateTime:
		if sel.Slot == nil || !sel.Slot.IsAvailable {
			return apperrors.Validation("Select an available time to continue", map[string]any{"field": "slot"})
		}
		w.invalidate()
		w.state.Step = StepCustomer
		return nil

	case StepCustomer:
		return w.submitCustomerInfo(ctx, sel.Customer, "")

	default:
		return apperrors.Validation("Booking already confirmed, start a new one", nil)
	}
}

func (w *Wizard) back(ctx context.Context) error {
	switch w.state.Step {
	case StepServices:
		return nil
	case StepStaff:
		w.invalidate()
		w.state.Step = StepServices
		return nil
	case StepDateTime:
		w.invalidate()
		w.state.Step = StepStaff
		return nil
	case StepCustomer:
		return w.run(ctx, w.enterDateTime)
	default:
		return apperrors.Validation("Booking already confirmed, start a new one", nil)
	}
}

func (w *Wizard) reset() {
	w.invalidate()
	w.state = initialState()
	w.service = nil
	w.lastDateTimeStaff = ""
	w.retry = nil
	w.pending = nil
}

func (w *Wizard) clearStaff() {
	w.state.Selection.StaffID = ""
	w.state.Selection.Slot = nil
	w.state.Grid = nil
	w.state.Alternatives = nil
}

// enterDateTime is the datetime step's entry action. On failure the wizard
// stays where it was.
func (w *Wizard) enterDateTime(ctx context.Context) error {
	sel := &w.state.Selection
	if sel.StaffID != w.lastDateTimeStaff {
		sel.Slot = nil
	}
	if sel.Date.IsZero() {
		sel.Date = w.svc.today()
	}

	applied, err := w.fetchGrid(ctx)
	if err != nil || !applied {
		return err
	}
	w.state.Step = StepDateTime
	w.lastDateTimeStaff = sel.StaffID
	return nil
}

func (w *Wizard) refreshGrid(ctx context.Context) error {
	applied, err := w.fetchGrid(ctx)
	if err == nil && applied {
		w.lastDateTimeStaff = w.state.Selection.StaffID
	}
	return err
}

// fetchGrid must be called with w.mu held. It releases the lock while the
// gateway works and reports whether the result was applied.
func (w *Wizard) fetchGrid(ctx context.Context) (bool, error) {
	if w.service == nil {
		return false, apperrors.Validation("Select a service first", map[string]any{"field": "service_id"})
	}

	w.invalidate()
	token := w.token
	sel := w.state.Selection
	req := availability.GridRequest{
		TenantID:           w.tenantID,
		StaffID:            sel.StaffID,
		Date:               sel.Date,
		ServiceDurationMin: w.service.DurationMin,
		WorkStart:          w.svc.cfg.WorkStart,
		WorkEnd:            w.svc.cfg.WorkEnd,
		StepMin:            w.svc.cfg.StepMin,
	}
	w.state.Busy = BusyChecking

	w.mu.Unlock()
	grid, err := w.svc.gateway.FetchSlotGrid(ctx, req)
	w.mu.Lock()

	if token != w.token {
		w.log.Debug("Discarded stale slot grid", "staff_id", req.StaffID, "date", req.Date.Format(time.DateOnly))
		return false, nil
	}
	w.state.Busy = BusyIdle
	if err != nil {
		return false, err
	}

	w.state.Grid = grid
	if slot := w.state.Selection.Slot; slot != nil {
		if fresh, ok := w.findSlot(slot.StartTime); ok {
			w.state.Selection.Slot = &fresh
		} else {
			w.state.Selection.Slot = nil
		}
	}
	return true, nil
}

func (w *Wizard) findSlot(start time.Time) (model.TimeSlot, bool) {
	for _, s := range w.state.Grid {
		if s.StaffID == w.state.Selection.StaffID && s.StartTime.Equal(start) {
			return s, true
		}
	}
	return model.TimeSlot{}, false
}

func (w *Wizard) submitCustomerInfo(ctx context.Context, info model.CustomerInfo, key string) error {
	if err := w.requireStep(StepCustomer); err != nil {
		return err
	}
	info = w.svc.normalizeCustomer(info)
	w.state.Selection.Customer = info
	if err := w.svc.validateCustomer(info); err != nil {
		return err
	}
	if w.state.Selection.Slot == nil || w.service == nil {
		return apperrors.Validation("Select a time before submitting", map[string]any{"field": "slot"})
	}
	if key == "" {
		key = SubmissionKey(w.tenantID, *w.state.Selection.Slot, info.Phone)
	}
	return w.run(ctx, func(ctx context.Context) error {
		return w.commit(ctx, key)
	})
}

// commit waits for the submission with the lock released and Busy set so
// that no second submission can start meanwhile. The submission itself
// outlives ctx: a caller that gives up leaves it pending, and the next
// attempt with the same key picks up its outcome instead of starting over.
func (w *Wizard) commit(ctx context.Context, key string) error {
	if w.pending == nil || w.pending.key != key {
		sub := &submission{
			TenantID: w.tenantID,
			Key:      key,
			Service:  *w.service,
			Slot:     *w.state.Selection.Slot,
			Customer: w.state.Selection.Customer,
		}
		w.pending = &pendingSubmission{key: key, slot: sub.Slot, done: w.svc.submit(ctx, sub)}
	}
	pending := w.pending
	w.invalidate()
	w.state.Busy = BusySubmitting

	w.mu.Unlock()
	var res submitResult
	settled := true
	select {
	case res = <-pending.done:
	case <-ctx.Done():
		settled = false
	}
	w.mu.Lock()

	w.state.Busy = BusyIdle
	if !settled {
		w.log.Warn("Request ended before the submission settled", "key", key, "error", ctx.Err())
		return ctx.Err()
	}
	if w.pending == pending {
		w.pending = nil
	}
	switch {
	case res.err == nil:
		w.confirm(res.booking)
		return nil
	case apperrors.IsConflict(res.err):
		return w.recoverFromConflict(ctx, pending.slot, res.err)
	default:
		return res.err
	}
}

func (w *Wizard) confirm(booking *model.Booking) {
	w.log.Info("Booking confirmed",
		"booking_id", booking.ID,
		"staff_id", booking.StaffID,
		"start_time", booking.StartTime,
	)
	b := *booking
	w.state.Booking = &b
	w.state.Step = StepConfirmation
	w.state.Selection = model.Selection{}
	w.state.Grid = nil
	w.state.Alternatives = nil
	w.retry = nil
}

// recoverFromConflict sends the wizard back to the datetime step with
// alternatives taken from the grid the customer chose from. Customer data
// survives. The grid is then refreshed; if that fails the conflict still
// stands and Retry refreshes again.
func (w *Wizard) recoverFromConflict(ctx context.Context, rejected model.TimeSlot, cause error) error {
	alternatives := w.svc.resolver.Alternatives(rejected, w.state.Grid)
	for i := range w.state.Grid {
		if w.state.Grid[i].Equal(rejected) {
			w.state.Grid[i].IsAvailable = false
		}
	}
	w.state.Selection.Slot = nil
	w.state.Step = StepDateTime
	w.lastDateTimeStaff = w.state.Selection.StaffID
	w.state.Alternatives = alternatives

	w.log.Info("Slot lost to a concurrent booking",
		"staff_id", rejected.StaffID,
		"start_time", rejected.StartTime,
		"alternatives", len(alternatives),
	)

	applied, err := w.fetchGrid(ctx)
	switch {
	case err != nil:
		w.log.Warn("Failed to refresh slot grid after conflict", "error", err)
		w.remember(w.refreshGrid)
	case applied:
		w.state.Alternatives = stillAvailable(w.state.Alternatives, w.state.Grid)
	}
	return cause
}

func stillAvailable(alternatives, grid []model.TimeSlot) []model.TimeSlot {
	out := alternatives[:0]
	for _, alt := range alternatives {
		for _, s := range grid {
			if s.Equal(alt) && s.IsAvailable {
				out = append(out, alt)
				break
			}
		}
	}
	return out
}
