package checkin

import "errors"

var (
	ErrAlreadyCheckedIn = errors.New("you have already checked in today")
	ErrCheckInNotFound  = errors.New("check-in not found")
)
