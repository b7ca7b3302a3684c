package model

import (
	"testing"
	"time"
)

func TestTimeSlot_Equal(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	base := NewTimeSlot("ana", start, 30*time.Minute)

	tests := []struct {
		name  string
		other TimeSlot
		want  bool
	}{
		{"same staff and start", TimeSlot{StaffID: "ana", StartTime: start}, true},
		{"availability ignored", TimeSlot{StaffID: "ana", StartTime: start, IsAvailable: true}, true},
		{"end ignored", NewTimeSlot("ana", start, time.Hour), true},
		{"same instant other zone", TimeSlot{StaffID: "ana", StartTime: start.In(time.FixedZone("BRT", -3*3600))}, true},
		{"other staff", TimeSlot{StaffID: "bruno", StartTime: start}, false},
		{"other start", TimeSlot{StaffID: "ana", StartTime: start.Add(30 * time.Minute)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Equal(tt.other); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTimeSlot_EndFollowsDuration(t *testing.T) {
	start := time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC)
	slot := NewTimeSlot("ana", start, 45*time.Minute)
	if !slot.EndTime.Equal(start.Add(45 * time.Minute)) {
		t.Errorf("EndTime = %s", slot.EndTime)
	}
}

func TestTimeSlot_SameDay(t *testing.T) {
	a := TimeSlot{StartTime: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
	b := TimeSlot{StartTime: time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC)}
	c := TimeSlot{StartTime: time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)}
	if !a.SameDay(b) {
		t.Errorf("expected same day")
	}
	if a.SameDay(c) {
		t.Errorf("expected different day")
	}
}

func TestSelection_CloneDetachesSlot(t *testing.T) {
	slot := NewTimeSlot("ana", time.Now(), time.Hour)
	sel := Selection{StaffID: "ana", Slot: &slot}
	clone := sel.Clone()
	clone.Slot.StaffID = "bruno"
	if sel.Slot.StaffID != "ana" {
		t.Errorf("Clone shared the slot pointer")
	}
}
