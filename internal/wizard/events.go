package wizard

import (
	"time"

	"agenda/pkg/model"
)

type Step string

const (
	StepServices     Step = "services"
	StepStaff        Step = "staff"
	StepDateTime     Step = "datetime"
	StepCustomer     Step = "customer"
	StepConfirmation Step = "confirmation"
)

type Busy string

const (
	BusyIdle       Busy = "idle"
	BusyChecking   Busy = "checking"
	BusySubmitting Busy = "submitting"
)

// Event is anything the wizard can be asked to do.
type Event interface {
	Name() string
}

type SelectService struct {
	ServiceID string `json:"service_id"`
}

type SelectStaff struct {
	StaffID string `json:"staff_id"`
}

type SelectDate struct {
	Date time.Time `json:"date"`
}

type SelectSlot struct {
	StartTime time.Time `json:"start_time"`
}

// SubmitCustomerInfo commits the booking. Duplicate submissions sharing an
// IdempotencyKey produce one booking; an empty key is derived from the selection.
type SubmitCustomerInfo struct {
	Info           model.CustomerInfo `json:"info"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
}

type Next struct{}

type Back struct{}

type Reset struct{}

// Retry re-runs the last action that failed with a transient error.
type Retry struct{}

// ApplyAlternative picks one of the slots proposed after a conflict and goes
// straight to the customer step.
type ApplyAlternative struct {
	StartTime time.Time `json:"start_time"`
}

func (SelectService) Name() string      { return "select_service" }
func (SelectStaff) Name() string        { return "select_staff" }
func (SelectDate) Name() string         { return "select_date" }
func (SelectSlot) Name() string         { return "select_slot" }
func (SubmitCustomerInfo) Name() string { return "submit_customer_info" }
func (Next) Name() string               { return "next" }
func (Back) Name() string               { return "back" }
func (Reset) Name() string              { return "reset" }
func (Retry) Name() string              { return "retry" }
func (ApplyAlternative) Name() string   { return "apply_alternative" }
