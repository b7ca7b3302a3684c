package wizard

import (
	"slices"

	apperrors "agenda/pkg/errors"
	"agenda/pkg/model"
)

// State is a snapshot of the wizard. Callers get copies; mutating one never
// reaches the wizard.
type State struct {
	Step         Step                `json:"step"`
	Selection    model.Selection     `json:"selection"`
	Grid         []model.TimeSlot    `json:"grid,omitempty"`
	Busy         Busy                `json:"busy"`
	Error        *apperrors.AppError `json:"error,omitempty"`
	Alternatives []model.TimeSlot    `json:"alternatives,omitempty"`
	Booking      *model.Booking      `json:"booking,omitempty"`
}

func initialState() State {
	return State{Step: StepServices, Busy: BusyIdle}
}

func (s State) clone() State {
	out := s
	out.Selection = s.Selection.Clone()
	out.Grid = slices.Clone(s.Grid)
	out.Alternatives = slices.Clone(s.Alternatives)
	if s.Booking != nil {
		b := *s.Booking
		out.Booking = &b
	}
	return out
}
