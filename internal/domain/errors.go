package domain

import "errors"

var (
	// ErrValidation marks input that fails a domain rule.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a lookup miss for a recipient, template, or record.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate marks an attempt to enqueue a recipient already in the batch.
	ErrDuplicate = errors.New("duplicate recipient")
	// ErrBatchBusy marks an attempt to start a batch run while one is active.
	ErrBatchBusy = errors.New("batch run already in progress")
	// ErrAuthRequired marks a draft-service response demanding re-authentication.
	ErrAuthRequired = errors.New("authentication required")
)
