package postgresql_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// attendanceTables lists every table the migrations create, children first.
var attendanceTables = []string{
	"raw_punches",
	"manual_corrections",
	"work_schedules",
	"schedule_exceptions",
	"calendar_event_employees",
	"calendar_events",
	"processed_records",
	"recalc_queue",
}

// newTestDatabase connects to TEST_DATABASE_URL and applies the migrations.
// Tests are skipped when the variable is unset.
func newTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL tests")
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dsn)
	require.NoError(t, err, "connect to test database")
	t.Cleanup(db.Close)

	require.NoError(t, database.MigratePostgreSQL(db), "migrate test database")
	return db
}

// truncateAll empties every attendance table in one statement.
func truncateAll(t *testing.T, db *database.DB) {
	t.Helper()

	_, err := db.Exec(context.Background(), "TRUNCATE TABLE "+strings.Join(attendanceTables, ", ")+" RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}
