package domain

import "errors"

var (
	// ErrUnauthorized is returned when the caller may not run an update pass.
	ErrUnauthorized = errors.New("insufficient permissions")

	// ErrNotFound is returned for unknown attachments and users.
	ErrNotFound = errors.New("not found")
)
