package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// ========================================
// WORKER HEALTH BASELINE
// ========================================

func (r *reportRepositoryImpl) GetBaseline(ctx context.Context, userID string, from, to time.Time) (*report.Baseline, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*),
			COALESCE(AVG(readiness_score), 0)::float8,
			COALESCE(AVG(mood), 0)::float8,
			COALESCE(AVG(stress), 0)::float8,
			COALESCE(AVG(sleep), 0)::float8,
			COALESCE(AVG(physical_health), 0)::float8,
			COALESCE(MIN(readiness_score), 0)::int,
			COALESCE(MAX(readiness_score), 0)::int,
			COUNT(*) FILTER (WHERE readiness_status = 'GREEN'),
			COUNT(*) FILTER (WHERE readiness_status = 'YELLOW'),
			COUNT(*) FILTER (WHERE readiness_status = 'RED')
		FROM checkins
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
	`

	var b report.Baseline
	err := q.QueryRow(ctx, query, userID, from, to).Scan(
		&b.CheckInCount,
		&b.AvgScore,
		&b.AvgMood,
		&b.AvgStress,
		&b.AvgSleep,
		&b.AvgPhysicalHealth,
		&b.MinScore,
		&b.MaxScore,
		&b.GreenCount,
		&b.YellowCount,
		&b.RedCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get baseline for user %s: %w", userID, err)
	}

	if b.CheckInCount == 0 {
		return nil, nil
	}
	return &b, nil
}

// ========================================
// WORKER HEALTH MONTHLY HISTORY
// ========================================

func (r *reportRepositoryImpl) GetMonthlyHistory(ctx context.Context, userID string, tz string, from time.Time) ([]report.MonthlyBucket, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			EXTRACT(YEAR FROM created_at AT TIME ZONE $2)::int AS year,
			EXTRACT(MONTH FROM created_at AT TIME ZONE $2)::int AS month,
			COUNT(*),
			AVG(readiness_score)::float8
		FROM checkins
		WHERE user_id = $1 AND created_at >= $3
		GROUP BY year, month
		ORDER BY year DESC, month DESC
	`

	rows, err := q.Query(ctx, query, userID, tz, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly history for user %s: %w", userID, err)
	}
	defer rows.Close()

	var buckets []report.MonthlyBucket
	for rows.Next() {
		var m report.MonthlyBucket
		if err := rows.Scan(&m.Year, &m.Month, &m.CheckInCount, &m.AvgScore); err != nil {
			return nil, fmt.Errorf("failed to scan monthly bucket: %w", err)
		}
		m.Label = fmt.Sprintf("%04d-%02d", m.Year, m.Month)
		buckets = append(buckets, m)
	}
	return buckets, rows.Err()
}
