package model

import "time"

type Service struct {
	ID          string  `json:"id" bson:"_id,omitempty"`
	TenantID    string  `json:"tenant_id" bson:"tenant_id"`
	Name        string  `json:"name" bson:"name" validate:"required,min=2,max=100"`
	DurationMin int     `json:"duration_min" bson:"duration_min" validate:"required,gt=0,max=720"`
	Price       float64 `json:"price" bson:"price" validate:"gte=0"`
	Category    string  `json:"category,omitempty" bson:"category,omitempty"`
}

func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMin) * time.Minute
}

// StaffMember carries no availability; that is always derived from the store.
type StaffMember struct {
	ID          string `json:"id" bson:"_id,omitempty"`
	TenantID    string `json:"tenant_id" bson:"tenant_id"`
	DisplayName string `json:"display_name" bson:"display_name"`
}

type Tenant struct {
	ID   string `json:"id" bson:"_id,omitempty"`
	Slug string `json:"slug" bson:"slug"`
	Name string `json:"name" bson:"name"`
}
