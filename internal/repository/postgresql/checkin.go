package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/query"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/timezone"
)

var checkinColumns = columns{
	checkin.FieldID:        "c.id",
	checkin.FieldUserID:    "c.user_id",
	checkin.FieldCompanyID: "c.company_id",
	checkin.FieldCreatedAt: "c.created_at",
	checkin.FieldStatus:    "c.readiness_status",
	checkin.FieldScore:     "c.readiness_score",
	checkin.FieldUserName:  "u.full_name",
	checkin.FieldUserEmail: "u.email",
}

type checkInRepositoryImpl struct {
	db *database.DB
}

func NewCheckInRepository(db *database.DB) checkin.CheckInRepository {
	return &checkInRepositoryImpl{db: db}
}

// Create implements checkin.CheckInRepository.
func (r *checkInRepositoryImpl) Create(ctx context.Context, c checkin.CheckIn) (checkin.CheckIn, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO checkins (
			user_id, company_id,
			mood, stress, sleep, physical_health,
			readiness_score, readiness_status, notes
		) VALUES (
			$1, $2,
			$3, $4, $5, $6,
			$7, $8, $9
		) RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		c.UserID, c.CompanyID,
		c.Mood, c.Stress, c.Sleep, c.PhysicalHealth,
		c.ReadinessScore, c.ReadinessStatus, c.Notes,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return checkin.CheckIn{}, fmt.Errorf("failed to create check-in: %w", err)
	}

	return c, nil
}

// LockUserDay implements checkin.CheckInRepository. The advisory lock is
// transaction scoped, so it only holds inside WithinTransaction.
func (r *checkInRepositoryImpl) LockUserDay(ctx context.Context, userID string, date time.Time) error {
	q := GetQuerier(ctx, r.db)

	key := "checkin:" + userID + ":" + date.Format(timezone.DateLayout)
	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return fmt.Errorf("failed to lock check-in day: %w", err)
	}
	return nil
}

// List implements checkin.CheckInRepository.
func (r *checkInRepositoryImpl) List(ctx context.Context, spec query.Spec) ([]checkin.CheckIn, error) {
	q := GetQuerier(ctx, r.db)

	b := newSpecBuilder(checkinColumns)
	where, err := b.where(spec)
	if err != nil {
		return nil, err
	}
	tail, err := b.tail(spec, "c.created_at ASC, c.id ASC")
	if err != nil {
		return nil, err
	}

	sql := `
		SELECT c.id, c.user_id, c.company_id, c.mood, c.stress, c.sleep, c.physical_health,
			   c.readiness_score, c.readiness_status, c.notes, c.created_at,
			   u.full_name, u.email
		FROM checkins c
		INNER JOIN users u ON u.id = c.user_id
		WHERE ` + where + tail

	rows, err := q.Query(ctx, sql, b.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	defer rows.Close()

	var checkIns []checkin.CheckIn
	for rows.Next() {
		var c checkin.CheckIn
		err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.CompanyID,
			&c.Mood,
			&c.Stress,
			&c.Sleep,
			&c.PhysicalHealth,
			&c.ReadinessScore,
			&c.ReadinessStatus,
			&c.Notes,
			&c.CreatedAt,
			&c.UserName,
			&c.UserEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		checkIns = append(checkIns, c)
	}
	return checkIns, rows.Err()
}

// Count implements checkin.CheckInRepository.
func (r *checkInRepositoryImpl) Count(ctx context.Context, spec query.Spec) (int64, error) {
	q := GetQuerier(ctx, r.db)

	b := newSpecBuilder(checkinColumns)
	where, err := b.where(spec)
	if err != nil {
		return 0, err
	}

	sql := `
		SELECT COUNT(*)
		FROM checkins c
		INNER JOIN users u ON u.id = c.user_id
		WHERE ` + where

	var total int64
	if err := q.QueryRow(ctx, sql, b.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count check-ins: %w", err)
	}
	return total, nil
}
