package model

import "time"

type TimeSlot struct {
	StaffID     string    `json:"staff_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
}

func NewTimeSlot(staffID string, start time.Time, duration time.Duration) TimeSlot {
	return TimeSlot{
		StaffID:   staffID,
		StartTime: start,
		EndTime:   start.Add(duration),
	}
}

// Equal compares identity only: staff and start.
func (s TimeSlot) Equal(other TimeSlot) bool {
	return s.StaffID == other.StaffID && s.StartTime.Equal(other.StartTime)
}

func (s TimeSlot) SameDay(other TimeSlot) bool {
	y1, m1, d1 := s.StartTime.Date()
	y2, m2, d2 := other.StartTime.In(s.StartTime.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
