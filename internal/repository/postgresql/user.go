package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, team_id, full_name, email, role, is_active
		FROM users
		WHERE id = $1 AND company_id = $2
	`

	var found user.User
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&found.ID,
		&found.CompanyID,
		&found.TeamID,
		&found.FullName,
		&found.Email,
		&found.Role,
		&found.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user %s: %w", id, err)
	}

	return found, nil
}
