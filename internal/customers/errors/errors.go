package errors

import "errors"

var (
	ErrNotFound = errors.New("customer not found")

	ErrInvalidPhone = errors.New("phone must have 10 or 11 digits")

	ErrMissingTenant = errors.New("tenant id is required")
)
