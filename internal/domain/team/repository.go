package team

import "context"

// TeamRepository reads team and membership snapshots. Membership is owned by
// team management; readers always see the membership as of the call.
type TeamRepository interface {
	// GetByID returns an active or inactive team with its company timezone
	GetByID(ctx context.Context, id string) (Team, error)

	// GetFirstActiveByCompany returns the company's first active team ordered by name
	GetFirstActiveByCompany(ctx context.Context, companyID string) (Team, error)

	// GetByLeader returns the active team led by leaderID
	GetByLeader(ctx context.Context, leaderID string, companyID string) (Team, error)

	// GetByMember returns the active team the user is assigned to
	GetByMember(ctx context.Context, userID string, companyID string) (Team, error)

	// ListActive returns every active team across companies
	ListActive(ctx context.Context) ([]Team, error)

	// ListActiveMembers returns active members ordered by full name
	ListActiveMembers(ctx context.Context, teamID string) ([]Member, error)
}
