package customers

import (
	"context"
	"sync"
	"time"

	customerserrors "agenda/internal/customers/errors"
	"agenda/pkg/model"

	"github.com/google/uuid"
)

// MemoryStore is a Store kept in process memory, used in development and tests.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]*model.Customer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: map[string]*model.Customer{}}
}

func naturalKey(tenantID, phone string) string {
	return tenantID + "|" + phone
}

func (s *MemoryStore) FindByPhone(ctx context.Context, tenantID, phone string) (*model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.rows[naturalKey(tenantID, phone)]
	if !ok {
		return nil, customerserrors.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, customer *model.Customer) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	key := naturalKey(customer.TenantID, customer.Phone)
	if c, ok := s.rows[key]; ok {
		c.Name = customer.Name
		c.Email = customer.Email
		c.UpdatedAt = now
		return c.ID, nil
	}

	row := *customer
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	row.CreatedAt = now
	row.UpdatedAt = now
	s.rows[key] = &row
	return row.ID, nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
