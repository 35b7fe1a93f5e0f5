package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
)

type TeamResolverImpl struct {
	team.TeamRepository
}

func NewTeamResolver(repo team.TeamRepository) team.TeamResolver {
	return &TeamResolverImpl{TeamRepository: repo}
}

// Resolve implements team.TeamResolver.
func (r *TeamResolverImpl) Resolve(ctx context.Context, actor user.Actor, requestedTeamID string) (team.Team, error) {
	if actor.CompanyID == "" {
		return team.Team{}, user.ErrCompanyIDRequired
	}

	switch {
	case actor.Role.IsElevated():
		if requestedTeamID == "" {
			t, err := r.TeamRepository.GetFirstActiveByCompany(ctx, actor.CompanyID)
			if err != nil {
				if errors.Is(err, team.ErrTeamNotFound) {
					return team.Team{}, team.ErrNoTeamAssigned
				}
				return team.Team{}, fmt.Errorf("failed to get default team: %w", err)
			}
			return t, nil
		}

		t, err := r.TeamRepository.GetByID(ctx, requestedTeamID)
		if err != nil {
			if errors.Is(err, team.ErrTeamNotFound) {
				return team.Team{}, team.ErrTeamNotFound
			}
			return team.Team{}, fmt.Errorf("failed to get team: %w", err)
		}
		// Teams of other companies are reported as missing
		if t.CompanyID != actor.CompanyID || !t.IsActive {
			return team.Team{}, team.ErrTeamNotFound
		}
		return t, nil

	case actor.Role == user.RoleTeamLead:
		t, err := r.TeamRepository.GetByLeader(ctx, actor.UserID, actor.CompanyID)
		if err != nil {
			if errors.Is(err, team.ErrNoTeamAssigned) || errors.Is(err, team.ErrTeamNotFound) {
				return team.Team{}, team.ErrNoTeamAssigned
			}
			return team.Team{}, fmt.Errorf("failed to get led team: %w", err)
		}
		if requestedTeamID != "" && requestedTeamID != t.ID {
			return team.Team{}, team.ErrForbiddenTeam
		}
		return t, nil

	default:
		t, err := r.TeamRepository.GetByMember(ctx, actor.UserID, actor.CompanyID)
		if err != nil {
			if errors.Is(err, team.ErrNoTeamAssigned) || errors.Is(err, team.ErrTeamNotFound) {
				return team.Team{}, team.ErrNoTeamAssigned
			}
			return team.Team{}, fmt.Errorf("failed to get assigned team: %w", err)
		}
		if requestedTeamID != "" && requestedTeamID != t.ID {
			return team.Team{}, team.ErrForbiddenTeam
		}
		return t, nil
	}
}
