package chat

import "errors"

// Error taxonomy shared by the REST handlers and the realtime layer.
// Provider failures are deliberately absent: translation and summary
// generation degrade to fallbacks instead of failing the operation.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPersistence       = errors.New("persistence failed")
)
