package sessions

import (
	"context"
	"sync"
	"time"

	"agenda/internal/wizard"
	apperrors "agenda/pkg/errors"
	"agenda/pkg/logger"
)

const DefaultTTL = 30 * time.Minute

// Registry keeps live wizard sessions and evicts the ones idle past the TTL.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*wizard.Wizard
	ttl      time.Duration
	now      func() time.Time
	log      *logger.Logger
}

func NewRegistry(ttl time.Duration, log *logger.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		sessions: make(map[string]*wizard.Wizard),
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

func (r *Registry) Add(w *wizard.Wizard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[w.ID()] = w
}

// Get returns the tenant's session. Sessions of other tenants and expired
// ones are reported as not found.
func (r *Registry) Get(tenantID, id string) (*wizard.Wizard, error) {
	r.mu.RLock()
	w, exists := r.sessions[id]
	r.mu.RUnlock()

	if !exists || w.TenantID() != tenantID {
		return nil, apperrors.NotFoundWithID("Session", id)
	}
	if r.expired(w) {
		r.mu.Lock()
		delete(r.sessions, id)
		r.mu.Unlock()
		return nil, apperrors.NotFoundWithID("Session", id)
	}
	return w, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Evict drops idle sessions and returns how many were removed. Expiry is
// decided under the read lock so lookups keep flowing during a sweep.
func (r *Registry) Evict() int {
	r.mu.RLock()
	var idle []string
	for id, w := range r.sessions {
		if r.expired(w) {
			idle = append(idle, id)
		}
	}
	r.mu.RUnlock()
	if len(idle) == 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for _, id := range idle {
		if w, exists := r.sessions[id]; exists && r.expired(w) {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Run evicts on every interval tick until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.Evict(); n > 0 {
				r.log.Debug("Evicted idle sessions", "count", n, "remaining", r.Len())
			}
		case <-ctx.Done():
			return
		}
	}
}

func (r *Registry) expired(w *wizard.Wizard) bool {
	return r.now().Sub(w.LastActive()) > r.ttl
}
