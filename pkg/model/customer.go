package model

import "time"

// Customer is keyed by (TenantID, Phone). Name and Email are overwritten on
// every booking attempt.
type Customer struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	TenantID  string    `json:"tenant_id" bson:"tenant_id"`
	Phone     string    `json:"phone" bson:"phone"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email,omitempty" bson:"email,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// CustomerInfo is the contact data typed into the customer step.
type CustomerInfo struct {
	Name  string `json:"name" validate:"required,min=1,max=120"`
	Phone string `json:"phone" validate:"required,local_phone"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Notes string `json:"notes,omitempty" validate:"max=500"`
}
