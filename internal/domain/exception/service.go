package exception

import (
	"context"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
)

// ExceptionService runs the exception lifecycle and enqueues summary
// recalculation for every transition that moves leave coverage.
type ExceptionService interface {
	CreateRequest(ctx context.Context, actor user.Actor, req CreateExceptionRequest) (ExceptionResponse, error)
	CreateExemption(ctx context.Context, actor user.Actor, req CreateExemptionRequest) (ExceptionResponse, error)
	Approve(ctx context.Context, actor user.Actor, id string) (ExceptionResponse, error)
	Reject(ctx context.Context, actor user.Actor, id string) (ExceptionResponse, error)
	Update(ctx context.Context, actor user.Actor, id string, req UpdateExceptionRequest) (ExceptionResponse, error)
	EndEarly(ctx context.Context, actor user.Actor, id string, req EndEarlyRequest) (ExceptionResponse, error)
	Cancel(ctx context.Context, actor user.Actor, id string) error
}
