package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const summarySelect = `
	SELECT id, team_id, company_id, date, total_members, on_leave_count, expected_to_check_in,
		   checked_in_count, not_checked_in_count, green_count, yellow_count, red_count,
		   avg_readiness_score::float8, compliance_rate::float8, is_work_day, is_holiday,
		   created_at, updated_at
	FROM daily_team_summaries
`

type summaryRepositoryImpl struct {
	db *database.DB
}

func NewSummaryRepository(db *database.DB) summary.SummaryRepository {
	return &summaryRepositoryImpl{db: db}
}

func scanSummary(row pgx.Row) (summary.DailyTeamSummary, error) {
	var s summary.DailyTeamSummary
	err := row.Scan(
		&s.ID,
		&s.TeamID,
		&s.CompanyID,
		&s.Date,
		&s.TotalMembers,
		&s.OnLeaveCount,
		&s.ExpectedToCheckIn,
		&s.CheckedInCount,
		&s.NotCheckedInCount,
		&s.GreenCount,
		&s.YellowCount,
		&s.RedCount,
		&s.AvgReadinessScore,
		&s.ComplianceRate,
		&s.IsWorkDay,
		&s.IsHoliday,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

// Upsert implements summary.SummaryRepository. Concurrent writers for the same
// (team_id, date) serialize on the unique key; the last one wins.
func (r *summaryRepositoryImpl) Upsert(ctx context.Context, s summary.DailyTeamSummary) (summary.DailyTeamSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO daily_team_summaries (
			team_id, company_id, date,
			total_members, on_leave_count, expected_to_check_in,
			checked_in_count, not_checked_in_count,
			green_count, yellow_count, red_count,
			avg_readiness_score, compliance_rate,
			is_work_day, is_holiday
		) VALUES (
			$1, $2, $3,
			$4, $5, $6,
			$7, $8,
			$9, $10, $11,
			$12, $13,
			$14, $15
		)
		ON CONFLICT (team_id, date) DO UPDATE SET
			company_id           = EXCLUDED.company_id,
			total_members        = EXCLUDED.total_members,
			on_leave_count       = EXCLUDED.on_leave_count,
			expected_to_check_in = EXCLUDED.expected_to_check_in,
			checked_in_count     = EXCLUDED.checked_in_count,
			not_checked_in_count = EXCLUDED.not_checked_in_count,
			green_count          = EXCLUDED.green_count,
			yellow_count         = EXCLUDED.yellow_count,
			red_count            = EXCLUDED.red_count,
			avg_readiness_score  = EXCLUDED.avg_readiness_score,
			compliance_rate      = EXCLUDED.compliance_rate,
			is_work_day          = EXCLUDED.is_work_day,
			is_holiday           = EXCLUDED.is_holiday,
			updated_at           = NOW()
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		s.TeamID, s.CompanyID, s.Date,
		s.TotalMembers, s.OnLeaveCount, s.ExpectedToCheckIn,
		s.CheckedInCount, s.NotCheckedInCount,
		s.GreenCount, s.YellowCount, s.RedCount,
		s.AvgReadinessScore, s.ComplianceRate,
		s.IsWorkDay, s.IsHoliday,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return summary.DailyTeamSummary{}, fmt.Errorf("failed to upsert summary for team %s on %s: %w",
			s.TeamID, s.Date.Format("2006-01-02"), err)
	}

	return s, nil
}

// GetByTeamAndDate implements summary.SummaryRepository.
func (r *summaryRepositoryImpl) GetByTeamAndDate(ctx context.Context, teamID string, date time.Time) (summary.DailyTeamSummary, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanSummary(q.QueryRow(ctx, summarySelect+`WHERE team_id = $1 AND date = $2`, teamID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return summary.DailyTeamSummary{}, summary.ErrSummaryNotFound
		}
		return summary.DailyTeamSummary{}, fmt.Errorf("failed to get summary: %w", err)
	}
	return s, nil
}

// ListByTeamInRange implements summary.SummaryRepository.
func (r *summaryRepositoryImpl) ListByTeamInRange(ctx context.Context, teamID string, from, to time.Time) ([]summary.DailyTeamSummary, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, summarySelect+`
		WHERE team_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC
	`, teamID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	defer rows.Close()

	var summaries []summary.DailyTeamSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
