package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrCompanyIDRequired       = errors.New("company ID is required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
