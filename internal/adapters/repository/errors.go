package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound           = errors.New("submission not found")
	ErrUnsupportedBackend = errors.New("unsupported store backend")
	ErrMissingID          = errors.New("submission id is required")
	ErrConflict           = errors.New("concurrent update conflict")
)
