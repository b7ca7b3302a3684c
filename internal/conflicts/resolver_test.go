package conflicts

import (
	"math/rand"
	"testing"
	"time"

	"agenda/pkg/model"
)

func slotAt(h, m int, free bool) model.TimeSlot {
	start := time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
	return model.TimeSlot{StaffID: "ana", StartTime: start, EndTime: start.Add(30 * time.Minute), IsAvailable: free}
}

func starts(slots []model.TimeSlot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.StartTime.Format("15:04")
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAlternatives(t *testing.T) {
	rejected := slotAt(9, 0, true)

	tests := []struct {
		name string
		grid []model.TimeSlot
		want []string
	}{
		{
			name: "nearest first, taken slots skipped",
			grid: []model.TimeSlot{slotAt(8, 30, true), slotAt(9, 0, false), slotAt(9, 30, true), slotAt(10, 0, false)},
			want: []string{"08:30", "09:30"},
		},
		{
			name: "interleaves earlier and later by distance",
			grid: []model.TimeSlot{
				slotAt(8, 0, true), slotAt(8, 30, true), slotAt(9, 0, true),
				slotAt(9, 30, true), slotAt(10, 0, true), slotAt(11, 0, true),
			},
			want: []string{"08:30", "09:30", "08:00"},
		},
		{
			name: "rejected slot excluded even if grid says free",
			grid: []model.TimeSlot{slotAt(9, 0, true), slotAt(12, 0, true)},
			want: []string{"12:00"},
		},
		{
			name: "nothing available",
			grid: []model.TimeSlot{slotAt(8, 0, false), slotAt(9, 0, false)},
			want: []string{},
		},
		{
			name: "empty grid",
			grid: nil,
			want: []string{},
		},
		{
			name: "other staff and other days ignored",
			grid: []model.TimeSlot{
				{StaffID: "bruno", StartTime: slotAt(9, 30, true).StartTime, IsAvailable: true},
				{StaffID: "ana", StartTime: slotAt(9, 30, true).StartTime.AddDate(0, 0, 1), IsAvailable: true},
				slotAt(13, 0, true),
			},
			want: []string{"13:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := starts(Alternatives(rejected, tt.grid, DefaultLimit))
			if !equalStrings(got, tt.want) {
				t.Errorf("Alternatives() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlternatives_SubsetOfAvailableNeverRejected(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 200; run++ {
		var grid []model.TimeSlot
		for h := 8; h < 18; h++ {
			for _, m := range []int{0, 30} {
				grid = append(grid, slotAt(h, m, rng.Intn(2) == 0))
			}
		}
		rejected := grid[rng.Intn(len(grid))]
		rng.Shuffle(len(grid), func(i, j int) { grid[i], grid[j] = grid[j], grid[i] })

		alts := NewResolver(DefaultLimit).Alternatives(rejected, grid)
		if len(alts) > DefaultLimit {
			t.Fatalf("run %d: %d alternatives", run, len(alts))
		}
		for _, a := range alts {
			if a.Equal(rejected) {
				t.Fatalf("run %d: rejected slot proposed", run)
			}
			if !a.IsAvailable {
				t.Fatalf("run %d: unavailable slot proposed", run)
			}
		}
		for i := 1; i < len(alts); i++ {
			if distance(alts[i].StartTime, rejected.StartTime) < distance(alts[i-1].StartTime, rejected.StartTime) {
				t.Fatalf("run %d: not ranked by distance: %v", run, starts(alts))
			}
		}
	}
}

func TestNewResolver_ZeroLimit(t *testing.T) {
	alts := NewResolver(0).Alternatives(slotAt(9, 0, true), []model.TimeSlot{slotAt(9, 30, true)})
	if len(alts) != 0 {
		t.Errorf("expected no alternatives, got %v", starts(alts))
	}
}
