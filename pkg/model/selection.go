package model

import "time"

// Selection is the session-scoped, single-writer state the wizard mutates.
// Slot, when set, always belongs to StaffID.
type Selection struct {
	ServiceID string       `json:"service_id,omitempty"`
	StaffID   string       `json:"staff_id,omitempty"`
	Date      time.Time    `json:"date"`
	Slot      *TimeSlot    `json:"slot,omitempty"`
	Customer  CustomerInfo `json:"customer"`
}

func (s Selection) Clone() Selection {
	out := s
	if s.Slot != nil {
		slot := *s.Slot
		out.Slot = &slot
	}
	return out
}

// DayOf truncates t to midnight in its own location.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
