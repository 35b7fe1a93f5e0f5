package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/readiness-backend-go/migrations/postgres"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup initializes the test database
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies migrations. Tests
// are skipped when it is not set.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping repository integration tests")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 5, MinConns: 1})
	require.NoError(t, err, "failed to connect to test database")

	sqlDB := db.SQLDB()
	require.NoError(t, postgres.Migrate(sqlDB))
	_ = sqlDB.Close()

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(ctx))
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes all rows from every table
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"daily_team_summaries",
		"exceptions",
		"checkins",
		"holidays",
		"teams",
		"users",
		"companies",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// Close closes the database connection
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}

type fixture struct {
	CompanyID string
	TeamID    string
	UserIDs   []string
}

// seedTeam creates a company in tz with one active team of n members.
func (t *TestDatabaseSetup) seedTeam(tb testing.TB, tz string, n int) fixture {
	tb.Helper()
	ctx := context.Background()

	var f fixture
	require.NoError(tb, t.DB.QueryRow(ctx,
		`INSERT INTO companies (name, timezone) VALUES ('Acme Mining', $1) RETURNING id`, tz).Scan(&f.CompanyID))
	require.NoError(tb, t.DB.QueryRow(ctx,
		`INSERT INTO teams (company_id, name) VALUES ($1, 'Pit Crew A') RETURNING id`, f.CompanyID).Scan(&f.TeamID))

	for i := 0; i < n; i++ {
		var id string
		require.NoError(tb, t.DB.QueryRow(ctx, `
			INSERT INTO users (company_id, team_id, full_name, email, role)
			VALUES ($1, $2, $3, $4, 'WORKER') RETURNING id`,
			f.CompanyID, f.TeamID, fmt.Sprintf("Worker %02d", i+1), fmt.Sprintf("worker%02d@acme.test", i+1),
		).Scan(&id))
		f.UserIDs = append(f.UserIDs, id)
	}
	return f
}
