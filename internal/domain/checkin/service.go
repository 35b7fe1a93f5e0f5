package checkin

import (
	"context"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
)

// CheckInService accepts daily check-ins and notifies the summary engine.
type CheckInService interface {
	// Submit scores and stores the actor's check-in for today
	Submit(ctx context.Context, actor user.Actor, req SubmitCheckInRequest) (CheckInResponse, error)
}
