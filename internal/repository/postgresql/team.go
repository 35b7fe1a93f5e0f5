package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const teamSelect = `
	SELECT t.id, t.company_id, t.name, t.leader_id, t.work_days, t.shift_start, t.shift_end,
		   t.is_active, c.timezone
	FROM teams t
	INNER JOIN companies c ON c.id = t.company_id
`

type teamRepositoryImpl struct {
	db *database.DB
}

func NewTeamRepository(db *database.DB) team.TeamRepository {
	return &teamRepositoryImpl{db: db}
}

func scanTeam(row pgx.Row) (team.Team, error) {
	var t team.Team
	err := row.Scan(
		&t.ID,
		&t.CompanyID,
		&t.Name,
		&t.LeaderID,
		&t.WorkDays,
		&t.ShiftStart,
		&t.ShiftEnd,
		&t.IsActive,
		&t.CompanyTimezone,
	)
	return t, err
}

func (r *teamRepositoryImpl) getOne(ctx context.Context, notFound error, where string, args ...any) (team.Team, error) {
	q := GetQuerier(ctx, r.db)

	t, err := scanTeam(q.QueryRow(ctx, teamSelect+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return team.Team{}, notFound
		}
		return team.Team{}, fmt.Errorf("failed to get team: %w", err)
	}
	return t, nil
}

// GetByID implements team.TeamRepository.
func (r *teamRepositoryImpl) GetByID(ctx context.Context, id string) (team.Team, error) {
	return r.getOne(ctx, team.ErrTeamNotFound, `WHERE t.id = $1`, id)
}

// GetFirstActiveByCompany implements team.TeamRepository.
func (r *teamRepositoryImpl) GetFirstActiveByCompany(ctx context.Context, companyID string) (team.Team, error) {
	return r.getOne(ctx, team.ErrTeamNotFound, `
		WHERE t.company_id = $1 AND t.is_active
		ORDER BY t.name, t.id
		LIMIT 1
	`, companyID)
}

// GetByLeader implements team.TeamRepository.
func (r *teamRepositoryImpl) GetByLeader(ctx context.Context, leaderID string, companyID string) (team.Team, error) {
	return r.getOne(ctx, team.ErrNoTeamAssigned, `
		WHERE t.leader_id = $1 AND t.company_id = $2 AND t.is_active
		ORDER BY t.name, t.id
		LIMIT 1
	`, leaderID, companyID)
}

// GetByMember implements team.TeamRepository.
func (r *teamRepositoryImpl) GetByMember(ctx context.Context, userID string, companyID string) (team.Team, error) {
	return r.getOne(ctx, team.ErrNoTeamAssigned, `
		INNER JOIN users u ON u.team_id = t.id
		WHERE u.id = $1 AND u.company_id = $2 AND t.is_active
	`, userID, companyID)
}

// ListActive implements team.TeamRepository.
func (r *teamRepositoryImpl) ListActive(ctx context.Context) ([]team.Team, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, teamSelect+`WHERE t.is_active ORDER BY t.company_id, t.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active teams: %w", err)
	}
	defer rows.Close()

	var teams []team.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// ListActiveMembers implements team.TeamRepository.
func (r *teamRepositoryImpl) ListActiveMembers(ctx context.Context, teamID string) ([]team.Member, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, full_name, email
		FROM users
		WHERE team_id = $1 AND is_active
		ORDER BY full_name, id
	`

	rows, err := q.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of team %s: %w", teamID, err)
	}
	defer rows.Close()

	var members []team.Member
	for rows.Next() {
		var m team.Member
		if err := rows.Scan(&m.ID, &m.FullName, &m.Email); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
