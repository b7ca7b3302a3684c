package sessions

import (
	"context"
	"sync"
	"time"

	apperrors "agenda/pkg/errors"
	"agenda/pkg/model"
)

const DefaultSubmissionTTL = 24 * time.Hour

type submissionEntry struct {
	booking   *model.Booking
	expiresAt time.Time
}

// MemoryGuard is the single-process SubmissionGuard.
type MemoryGuard struct {
	mu      sync.Mutex
	entries map[string]submissionEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	if ttl <= 0 {
		ttl = DefaultSubmissionTTL
	}
	return &MemoryGuard{
		entries: make(map[string]submissionEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (g *MemoryGuard) Claim(ctx context.Context, key string) (*model.Booking, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if entry, exists := g.entries[key]; exists && now.Before(entry.expiresAt) {
		if entry.booking == nil {
			return nil, errSubmissionInFlight()
		}
		b := *entry.booking
		return &b, nil
	}
	g.entries[key] = submissionEntry{expiresAt: now.Add(g.ttl)}
	return nil, nil
}

func (g *MemoryGuard) Complete(ctx context.Context, key string, booking model.Booking) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries[key] = submissionEntry{booking: &booking, expiresAt: g.now().Add(g.ttl)}
	return nil
}

func (g *MemoryGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.entries, key)
	return nil
}

func errSubmissionInFlight() *apperrors.AppError {
	return apperrors.Busy("This booking is already being submitted")
}
