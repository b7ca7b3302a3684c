package conflicts

import (
	"sort"
	"time"

	"agenda/pkg/model"
)

const DefaultLimit = 3

type Resolver struct {
	limit int
}

func NewResolver(limit int) *Resolver {
	if limit < 0 {
		limit = 0
	}
	return &Resolver{limit: limit}
}

// Alternatives proposes replacements for a slot lost to a concurrent booking.
// Candidates come from grid only: same staff, same day, available, and never
// the rejected slot itself. They are ranked by distance from the rejected
// start; at equal distance the earlier slot wins.
func (r *Resolver) Alternatives(rejected model.TimeSlot, grid []model.TimeSlot) []model.TimeSlot {
	return Alternatives(rejected, grid, r.limit)
}

func Alternatives(rejected model.TimeSlot, grid []model.TimeSlot, limit int) []model.TimeSlot {
	if limit <= 0 {
		return []model.TimeSlot{}
	}

	candidates := make([]model.TimeSlot, 0, len(grid))
	for _, s := range grid {
		if !s.IsAvailable || s.Equal(rejected) {
			continue
		}
		if s.StaffID != rejected.StaffID || !rejected.SameDay(s) {
			continue
		}
		candidates = append(candidates, s)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		di := distance(candidates[i].StartTime, rejected.StartTime)
		dj := distance(candidates[j].StartTime, rejected.StartTime)
		if di != dj {
			return di < dj
		}
		return candidates[i].StartTime.Before(candidates[j].StartTime)
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

func distance(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}
