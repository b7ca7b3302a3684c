package catalog

import (
	"context"
	"sync"

	apperrors "agenda/pkg/errors"
	"agenda/pkg/model"
)

type MemoryCatalog struct {
	mu       sync.RWMutex
	services map[string]model.Service
	staff    map[string]model.StaffMember
	tenants  map[string]model.Tenant
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		services: map[string]model.Service{},
		staff:    map[string]model.StaffMember{},
		tenants:  map[string]model.Tenant{},
	}
}

func scoped(tenantID, id string) string {
	return tenantID + "|" + id
}

func (c *MemoryCatalog) AddTenant(t model.Tenant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tenants[t.Slug] = t
}

func (c *MemoryCatalog) AddService(s model.Service) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[scoped(s.TenantID, s.ID)] = s
}

func (c *MemoryCatalog) AddStaff(s model.StaffMember) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staff[scoped(s.TenantID, s.ID)] = s
}

func (c *MemoryCatalog) Service(ctx context.Context, tenantID, serviceID string) (*model.Service, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.services[scoped(tenantID, serviceID)]
	if !ok {
		return nil, apperrors.NotFoundWithID("Service", serviceID)
	}
	return &s, nil
}

func (c *MemoryCatalog) Staff(ctx context.Context, tenantID, staffID string) (*model.StaffMember, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.staff[scoped(tenantID, staffID)]
	if !ok {
		return nil, apperrors.NotFoundWithID("Staff", staffID)
	}
	return &s, nil
}

func (c *MemoryCatalog) TenantBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tenants[slug]
	if !ok {
		return nil, apperrors.NotFoundWithID("Tenant", slug)
	}
	return &t, nil
}
