package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/database"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

// ExistsInRange implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) ExistsInRange(ctx context.Context, companyID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM holidays
			WHERE company_id = $1 AND date >= $2 AND date < $3
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, companyID, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check holidays: %w", err)
	}
	return exists, nil
}

// ListInRange implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) ListInRange(ctx context.Context, companyID string, start, end time.Time) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, date, name
		FROM holidays
		WHERE company_id = $1 AND date >= $2 AND date < $3
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []holiday.Holiday
	for rows.Next() {
		var h holiday.Holiday
		if err := rows.Scan(&h.ID, &h.CompanyID, &h.Date, &h.Name); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}
