package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every error a service returns matches exactly one of these
// through errors.Is, so handlers can map them without string checks.
var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("not allowed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage failure")
)

var (
	ErrReportNotFound = fmt.Errorf("report %w", ErrNotFound)
	ErrClaimNotFound  = fmt.Errorf("claim %w", ErrNotFound)
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)

	ErrNotReportOwner = fmt.Errorf("%w: only the report owner can do this", ErrForbidden)
	ErrSelfClaim      = fmt.Errorf("%w: you cannot claim your own report", ErrForbidden)

	ErrReportRescued = fmt.Errorf("%w: report is already rescued", ErrConflict)
	ErrClaimDecided  = fmt.Errorf("%w: claim has already been decided", ErrConflict)
)

// ValidationError names the first missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func required(field string) error {
	return invalid(field, "is required")
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
