package holiday

import (
	"context"
	"time"
)

type HolidayRepository interface {
	// ExistsInRange reports whether the company declared a holiday whose date
	// falls within [start, end)
	ExistsInRange(ctx context.Context, companyID string, start, end time.Time) (bool, error)

	// ListInRange returns holidays whose date falls within [start, end)
	ListInRange(ctx context.Context, companyID string, start, end time.Time) ([]Holiday, error)
}
