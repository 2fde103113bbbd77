package store

import "errors"

var (
	// ErrValidation is returned for text that is blank or over its limit
	ErrValidation = errors.New("invalid text")

	// ErrNotFound is returned for unknown task or note ids
	ErrNotFound = errors.New("not found")

	// ErrApprovalBlocked is returned when approving a task with incomplete notes
	ErrApprovalBlocked = errors.New("task has incomplete notes")
)
