package catalog

import (
	"context"
	"testing"

	apperrors "agenda/pkg/errors"
	"agenda/pkg/model"
)

func TestMemoryCatalog_ScopesByTenant(t *testing.T) {
	c := NewMemoryCatalog()
	c.AddTenant(model.Tenant{ID: "t1", Slug: "studio-ana", Name: "Studio Ana"})
	c.AddService(model.Service{ID: "cut", TenantID: "t1", Name: "Corte", DurationMin: 30})
	c.AddStaff(model.StaffMember{ID: "ana", TenantID: "t1", DisplayName: "Ana"})
	ctx := context.Background()

	if _, err := c.Service(ctx, "t1", "cut"); err != nil {
		t.Errorf("Service() error = %v", err)
	}
	if _, err := c.Service(ctx, "t2", "cut"); !apperrors.IsNotFound(err) {
		t.Errorf("other tenant's service should be not found, got %v", err)
	}
	if _, err := c.Staff(ctx, "t1", "bruno"); !apperrors.IsNotFound(err) {
		t.Errorf("unknown staff should be not found, got %v", err)
	}

	tenant, err := c.TenantBySlug(ctx, "studio-ana")
	if err != nil || tenant.ID != "t1" {
		t.Errorf("TenantBySlug() = %v, %v", tenant, err)
	}
	if _, err := c.TenantBySlug(ctx, "nope"); !apperrors.IsNotFound(err) {
		t.Errorf("unknown slug should be not found, got %v", err)
	}
}
