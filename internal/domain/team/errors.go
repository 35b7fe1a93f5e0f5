package team

import "errors"

var (
	ErrNoTeamAssigned = errors.New("no team assigned")
	ErrTeamNotFound   = errors.New("team not found")
	ErrForbiddenTeam  = errors.New("you do not have access to this team")
	ErrMemberNotFound = errors.New("team member not found")
)
