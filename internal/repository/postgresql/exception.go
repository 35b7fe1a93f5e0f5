package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/exception"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/query"
	"github.com/jackc/pgx/v5"
)

var exceptionColumns = columns{
	exception.FieldID:          "e.id",
	exception.FieldUserID:      "e.user_id",
	exception.FieldCompanyID:   "e.company_id",
	exception.FieldStatus:      "e.status",
	exception.FieldIsExemption: "e.is_exemption",
	exception.FieldStartDate:   "e.start_date",
	exception.FieldEndDate:     "e.end_date",
	exception.FieldCreatedAt:   "e.created_at",
	exception.FieldUserName:    "u.full_name",
	exception.FieldUserEmail:   "u.email",
}

const exceptionSelect = `
	SELECT e.id, e.user_id, e.company_id, e.type, e.reason, e.status, e.start_date, e.end_date,
		   e.is_exemption, e.triggered_by_checkin_id, e.reviewed_by, e.reviewed_at,
		   e.created_at, e.updated_at, u.full_name, u.email
	FROM exceptions e
	INNER JOIN users u ON u.id = e.user_id
`

type exceptionRepositoryImpl struct {
	db *database.DB
}

func NewExceptionRepository(db *database.DB) exception.ExceptionRepository {
	return &exceptionRepositoryImpl{db: db}
}

func scanException(row pgx.Row) (exception.Exception, error) {
	var e exception.Exception
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.CompanyID,
		&e.Type,
		&e.Reason,
		&e.Status,
		&e.StartDate,
		&e.EndDate,
		&e.IsExemption,
		&e.TriggeredByCheckinID,
		&e.ReviewedBy,
		&e.ReviewedAt,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.UserName,
		&e.UserEmail,
	)
	return e, err
}

// Create implements exception.ExceptionRepository.
func (r *exceptionRepositoryImpl) Create(ctx context.Context, e exception.Exception) (exception.Exception, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO exceptions (
			user_id, company_id, type, reason, status,
			start_date, end_date, is_exemption, triggered_by_checkin_id,
			reviewed_by, reviewed_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		e.UserID, e.CompanyID, e.Type, e.Reason, e.Status,
		e.StartDate, e.EndDate, e.IsExemption, e.TriggeredByCheckinID,
		e.ReviewedBy, e.ReviewedAt,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return exception.Exception{}, fmt.Errorf("failed to create exception: %w", err)
	}

	return e, nil
}

// GetByID implements exception.ExceptionRepository.
func (r *exceptionRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (exception.Exception, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanException(q.QueryRow(ctx, exceptionSelect+`WHERE e.id = $1 AND e.company_id = $2`, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exception.Exception{}, exception.ErrExceptionNotFound
		}
		return exception.Exception{}, fmt.Errorf("failed to get exception %s: %w", id, err)
	}
	return e, nil
}

// Update implements exception.ExceptionRepository.
func (r *exceptionRepositoryImpl) Update(ctx context.Context, e exception.Exception) (exception.Exception, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE exceptions
		SET type = $1, reason = $2, status = $3, start_date = $4, end_date = $5,
			reviewed_by = $6, reviewed_at = $7, updated_at = NOW()
		WHERE id = $8 AND company_id = $9
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		e.Type, e.Reason, e.Status, e.StartDate, e.EndDate,
		e.ReviewedBy, e.ReviewedAt,
		e.ID, e.CompanyID,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exception.Exception{}, exception.ErrExceptionNotFound
		}
		return exception.Exception{}, fmt.Errorf("failed to update exception %s: %w", e.ID, err)
	}
	return e, nil
}

// Delete implements exception.ExceptionRepository.
func (r *exceptionRepositoryImpl) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM exceptions WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete exception %s: %w", id, err)
	}
	if commandTag.RowsAffected() != 1 {
		return exception.ErrExceptionNotFound
	}
	return nil
}

// List implements exception.ExceptionRepository.
func (r *exceptionRepositoryImpl) List(ctx context.Context, spec query.Spec) ([]exception.Exception, error) {
	q := GetQuerier(ctx, r.db)

	b := newSpecBuilder(exceptionColumns)
	where, err := b.where(spec)
	if err != nil {
		return nil, err
	}
	tail, err := b.tail(spec, "e.created_at DESC, e.id")
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, exceptionSelect+"WHERE "+where+tail, b.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list exceptions: %w", err)
	}
	defer rows.Close()

	var exceptions []exception.Exception
	for rows.Next() {
		e, err := scanException(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exception: %w", err)
		}
		exceptions = append(exceptions, e)
	}
	return exceptions, rows.Err()
}

// Count implements exception.ExceptionRepository.
func (r *exceptionRepositoryImpl) Count(ctx context.Context, spec query.Spec) (int64, error) {
	q := GetQuerier(ctx, r.db)

	b := newSpecBuilder(exceptionColumns)
	where, err := b.where(spec)
	if err != nil {
		return 0, err
	}

	sql := `
		SELECT COUNT(*)
		FROM exceptions e
		INNER JOIN users u ON u.id = e.user_id
		WHERE ` + where

	var total int64
	if err := q.QueryRow(ctx, sql, b.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count exceptions: %w", err)
	}
	return total, nil
}
