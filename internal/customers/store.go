package customers

import (
	"context"

	"agenda/pkg/model"
)

// Store persists customers under the (tenant, phone) natural key.
type Store interface {
	// FindByPhone returns customerserrors.ErrNotFound when no row matches.
	FindByPhone(ctx context.Context, tenantID, phone string) (*model.Customer, error)
	// Upsert creates or updates by (TenantID, Phone) and returns the stable id.
	Upsert(ctx context.Context, customer *model.Customer) (string, error)
}
