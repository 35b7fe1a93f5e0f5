package exception

import (
	"context"

	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/query"
)

type ExceptionRepository interface {
	// Create stores a new exception
	Create(ctx context.Context, e Exception) (Exception, error)

	// GetByID returns an exception scoped to its company
	GetByID(ctx context.Context, id string, companyID string) (Exception, error)

	// Update overwrites the mutable fields of an exception
	Update(ctx context.Context, e Exception) (Exception, error)

	// Delete removes an exception
	Delete(ctx context.Context, id string, companyID string) error

	// List returns exceptions matching spec, joined with the holder's name and email
	List(ctx context.Context, spec query.Spec) ([]Exception, error)

	// Count returns the number of exceptions matching spec, ignoring paging
	Count(ctx context.Context, spec query.Spec) (int64, error)
}
