package customers

import (
	"context"
	"errors"

	customerserrors "agenda/internal/customers/errors"
	apperrors "agenda/pkg/errors"
	"agenda/pkg/logger"
	"agenda/pkg/model"
	"agenda/pkg/sanitizer"
)

type Resolver struct {
	store Store
	log   *logger.Logger
}

func NewResolver(store Store, log *logger.Logger) *Resolver {
	return &Resolver{store: store, log: log}
}

// Resolve finds or creates the tenant's customer for phone and returns its id.
// An existing customer keeps its id and takes the latest name and email.
// Creation goes through the store's natural-key upsert, so a retried or
// concurrent call for the same phone converges on one id.
func (r *Resolver) Resolve(ctx context.Context, tenantID, phone, name, email string) (string, error) {
	phone = sanitizer.NormalizePhone(phone)
	name = sanitizer.NormalizeName(name)
	email = sanitizer.NormalizeEmail(email)

	if tenantID == "" {
		return "", apperrors.InvalidInput(customerserrors.ErrMissingTenant.Error())
	}
	if name == "" {
		return "", apperrors.Validation("Customer name is required", map[string]any{"field": "name"})
	}
	if !sanitizer.IsValidLocalPhone(phone) {
		return "", apperrors.Validation(customerserrors.ErrInvalidPhone.Error(), map[string]any{"field": "phone"})
	}

	existing, err := r.store.FindByPhone(ctx, tenantID, phone)
	if err != nil && !errors.Is(err, customerserrors.ErrNotFound) {
		return "", apperrors.UnavailableWithCause("Customer store", err)
	}

	customer := &model.Customer{
		TenantID: tenantID,
		Phone:    phone,
		Name:     name,
		Email:    email,
	}
	if existing != nil {
		customer.ID = existing.ID
	}

	id, err := r.store.Upsert(ctx, customer)
	if err != nil {
		return "", apperrors.UnavailableWithCause("Customer store", err)
	}

	if existing != nil {
		r.log.Debug("Customer updated", "tenant_id", tenantID, "customer_id", id)
	} else {
		r.log.Info("Customer created", "tenant_id", tenantID, "customer_id", id)
	}
	return id, nil
}
