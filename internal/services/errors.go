package services

import "errors"

// Service error taxonomy. Handlers translate these to HTTP statuses:
// ErrValidation -> 400, ErrNotFound -> 404, ErrPermissionDenied -> 403,
// ErrConflict -> 409, anything else -> 500.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("conflict")

	ErrTopicLocked        = errors.New("topic is locked")
	ErrTopicDeleted       = errors.New("topic is deleted")
	ErrVerificationNeeded = errors.New("author verification required for this category")
	ErrInvitationExpired  = errors.New("invitation has expired")
	ErrQuotaExceeded      = errors.New("organization quota exceeded")
)
