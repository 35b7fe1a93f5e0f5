package team

import (
	"context"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
)

// TeamResolver picks the team a dashboard request is about. Elevated roles may
// request any team of their company and default to the first active one; team
// leads get the team they lead; everyone else gets their assigned team.
type TeamResolver interface {
	Resolve(ctx context.Context, actor user.Actor, requestedTeamID string) (Team, error)
}
