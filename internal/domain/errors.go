package entity

import "errors"

// Error kinds. Every service error wraps exactly one of these so the HTTP
// layer can map it to a status code with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)
