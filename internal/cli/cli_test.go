package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/ponto-backend-go/internal/app"
	"github.com/cmlabs-hris/ponto-backend-go/internal/config"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv points the CLI at a fresh SQLite file.
func setupEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ponto.db")
	t.Setenv("DB_DRIVER", config.DriverSQLite)
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("JWT_SECRET_KEY", "cli-test-secret")
	t.Setenv("LOG_LEVEL", "error")
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "token", "--user", "ana", "--role", "admin")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got["access_token"])
	assert.Equal(t, "admin", got["role"])
	assert.NotEmpty(t, got["expires_at"])

	_, err = run(t, "token", "--user", "ana", "--role", "root")
	assert.ErrorContains(t, err, "unknown role")
}

func TestRecalculateCommand(t *testing.T) {
	setupEnv(t)
	ctx := context.Background()

	cfg, err := config.Load()
	require.NoError(t, err)
	a, err := app.Open(ctx, cfg)
	require.NoError(t, err)
	_, err = a.Attendance.IngestPunches(ctx, attendance.IngestPunchesRequest{Punches: []attendance.PunchInput{
		{EmployeeID: "E1", Timestamp: "2025-03-10T08:00:00"},
		{EmployeeID: "E2", Timestamp: "2025-03-10T08:10:00"},
	}})
	require.NoError(t, err)
	a.Close()

	out, err := run(t, "recalculate", "--date", "2025-03-10")
	require.NoError(t, err)

	var resp attendance.RecalculationResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Dates)
	assert.Equal(t, 2, resp.Processed)
	assert.Empty(t, resp.Failed)

	out, err = run(t, "retry", "--limit", "10")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 0, resp.Processed)
}

const feed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Test//Holidays//PT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:1\r\n" +
	"DTSTART;VALUE=DATE:20250421\r\n" +
	"DTEND;VALUE=DATE:20250422\r\n" +
	"SUMMARY:Tiradentes\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestImportICSCommand(t *testing.T) {
	setupEnv(t)

	path := filepath.Join(t.TempDir(), "holidays.ics")
	require.NoError(t, os.WriteFile(path, []byte(feed), 0o600))

	out, err := run(t, "import-ics", path)
	require.NoError(t, err)

	var resp struct {
		Imported int `json:"imported"`
		Skipped  int `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Imported)
	assert.Equal(t, 0, resp.Skipped)

	_, err = run(t, "import-ics", filepath.Join(t.TempDir(), "missing.ics"))
	assert.Error(t, err)
}

const schedules = `employees:
  - id: E001
    weekly:
      - weekday: 1
        morning_start: "08:00"
        morning_end: "12:00"
        afternoon_start: "13:00"
        afternoon_end: "17:00"
      - weekday: 9
        morning_start: "08:00"
        morning_end: "12:00"
    exceptions:
      - date: "2025-03-10"
        shift_type: non_working
`

func TestImportSchedulesCommand(t *testing.T) {
	setupEnv(t)

	path := filepath.Join(t.TempDir(), "schedules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(schedules), 0o600))

	out, err := run(t, "import-schedules", path)
	require.Error(t, err, "the invalid weekday is reported")
	assert.ErrorContains(t, err, "E001 weekday 9")

	var resp importSchedulesResult
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Weekly)
	assert.Equal(t, 1, resp.Exceptions)
	assert.Len(t, resp.Errors, 1)
}

func TestParseScheduleFileUnknownField(t *testing.T) {
	_, err := parseScheduleFile(bytes.NewBufferString("employees:\n  - id: E1\n    weekley: []\n"))
	assert.ErrorContains(t, err, "weekley")
}
