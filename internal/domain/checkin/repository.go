package checkin

import (
	"context"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/query"
)

// CheckInRepository reads and stores check-ins. Specs are built from the Field
// constants of this package.
type CheckInRepository interface {
	// Create stores a new check-in
	Create(ctx context.Context, checkIn CheckIn) (CheckIn, error)

	// List returns check-ins matching spec, joined with the user's name and email
	List(ctx context.Context, spec query.Spec) ([]CheckIn, error)

	// Count returns the number of check-ins matching spec, ignoring paging
	Count(ctx context.Context, spec query.Spec) (int64, error)

	// LockUserDay serializes submissions of one user for one company-local
	// date until the surrounding transaction ends
	LockUserDay(ctx context.Context, userID string, date time.Time) error
}
