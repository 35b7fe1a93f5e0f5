package user

import (
	"context"
)

type UserRepository interface {
	// GetByID returns a user of the given company
	GetByID(ctx context.Context, id string, companyID string) (User, error)
}
