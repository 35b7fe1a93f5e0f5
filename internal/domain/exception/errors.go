package exception

import "errors"

var (
	ErrExceptionNotFound = errors.New("exception not found")
	ErrAlreadyProcessed  = errors.New("exception already processed")
	ErrNotApproved       = errors.New("exception is not approved")
	ErrInvalidEndDate    = errors.New("new end date must be within the current exception range and before its end date")
	ErrInvalidDateRange  = errors.New("end date must not be before start date")
	ErrOverlapping       = errors.New("an active exception already covers part of this date range")
	ErrNotOwner          = errors.New("exception belongs to another user")
)
