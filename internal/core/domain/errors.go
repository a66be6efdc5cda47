package domain

import "errors"

// Validation errors raised synchronously by the core and the services.
// Callers wrap them with context and match with errors.Is.
var (
	// ErrInvalidInput covers malformed dates, LMP dates in the future and
	// nonsensical numeric input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateWeek is returned when a journal entry already exists for the week.
	ErrDuplicateWeek = errors.New("journal entry already exists for week")
	// ErrOutOfRange is returned for a week outside the allowed range.
	ErrOutOfRange = errors.New("week out of range")
	// ErrNotFound is returned when a record or reference entry does not exist
	// (or is not visible to the caller).
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller's role may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicateProfile is returned when the user already tracks a pregnancy.
	ErrDuplicateProfile = errors.New("pregnancy profile already exists for user")
)
