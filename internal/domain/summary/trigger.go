package summary

import (
	"context"
	"time"
)

// RecalculationRequest asks for the summaries of one team over an inclusive
// date span to be recomputed. Action names the write that caused it.
type RecalculationRequest struct {
	TeamID    string    `json:"team_id"`
	CompanyID string    `json:"company_id"`
	Timezone  string    `json:"timezone"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Action    string    `json:"action"`
}

// Trigger hands a recalculation off without blocking the caller. Failures are
// logged by the implementation and never returned.
type Trigger interface {
	Fire(ctx context.Context, req RecalculationRequest)
}
