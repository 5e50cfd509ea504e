package http

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/audit"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/database/dbtest"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/service"
)

func newTestApp(t *testing.T, logDir string) *fiber.App {
	t.Helper()
	if logDir == "" {
		logDir = t.TempDir()
	}
	return NewApp(service.New(dbtest.Open(t), audit.NewLogger(logDir)))
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, sonic.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

const updateBody = `{"timestamp":"2024-01-01T00:00","meter":"M1","value":105.5,"actor_name":"Jane","actor_email":"jane@pdx.edu"}`

func TestHealth(t *testing.T) {
	app := newTestApp(t, "")
	status, _ := do(t, app, fiber.MethodGet, "/health", "")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestUpdateEntryRoute(t *testing.T) {
	// GIVEN
	app := newTestApp(t, "")

	// WHEN the value is changed
	status, body := do(t, app, fiber.MethodPut, "/energy/Electricity/entries", updateBody)

	// THEN
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, 105.5, body["value"])
	assert.Equal(t, "2024-01-01 00:00:00", body["timestamp"])

	status, body = do(t, app, fiber.MethodGet, "/energy/Electricity/value?meter=M1&timestamp=2024-01-01T00:00", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 105.5, body["value"])

	// AND resubmitting is a conflict
	status, body = do(t, app, fiber.MethodPut, "/energy/Electricity/entries", updateBody)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "no_change_required", body["code"])

	// AND the change shows up in the log viewer
	status, body = do(t, app, fiber.MethodGet, "/energy/electricity/logs/entry_updates.log", "")
	require.Equal(t, fiber.StatusOK, status)
	lines := body["lines"].([]any)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "from 100.0 to 105.5")
}

func TestUpdateEntryRoute_Errors(t *testing.T) {
	app := newTestApp(t, "")

	cases := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown type", "/energy/Steam/entries", updateBody, fiber.StatusBadRequest, "unknown_energy_type"},
		{"unknown meter", "/energy/Electricity/entries",
			`{"timestamp":"2024-01-01 00:00:00","meter":"X1","value":1,"actor_name":"Jane","actor_email":"jane@pdx.edu"}`,
			fiber.StatusBadRequest, "unknown_meter"},
		{"missing value", "/energy/Electricity/entries",
			`{"timestamp":"2024-01-01 00:00:00","meter":"M1","actor_name":"Jane","actor_email":"jane@pdx.edu"}`,
			fiber.StatusBadRequest, "request"},
		{"bad timestamp", "/energy/Electricity/entries",
			`{"timestamp":"soon","meter":"M1","value":1,"actor_name":"Jane","actor_email":"jane@pdx.edu"}`,
			fiber.StatusBadRequest, "invalid_timestamp"},
		{"newline in actor", "/energy/Electricity/entries",
			`{"timestamp":"2024-01-01 00:00:00","meter":"M1","value":7,"actor_name":"Jane\n2024-06-01 09:30:00.000000: Bob","actor_email":"jane@pdx.edu"}`,
			fiber.StatusBadRequest, "invalid_actor"},
		{"no row", "/energy/Electricity/entries",
			`{"timestamp":"2024-01-01 00:30:00","meter":"M1","value":1,"actor_name":"Jane","actor_email":"jane@pdx.edu"}`,
			fiber.StatusNotFound, "not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := do(t, app, fiber.MethodPut, tc.path, tc.body)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestUpdateEntryRoute_AuditFailure(t *testing.T) {
	root := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, os.WriteFile(root, nil, 0o644))
	app := newTestApp(t, root)

	status, body := do(t, app, fiber.MethodPut, "/energy/Electricity/entries", updateBody)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "audit_write_failed", body["code"])
	assert.Equal(t, 105.5, body["value"])
}

func TestDateRangesRoute(t *testing.T) {
	app := newTestApp(t, "")

	status, body := do(t, app, fiber.MethodGet, "/energy/Electricity/date-ranges?meters=M1,M3", "")

	require.Equal(t, fiber.StatusOK, status)
	ranges := body["ranges"].(map[string]any)
	assert.Contains(t, ranges, "M1")
	assert.NotContains(t, ranges, "M3")
	assert.NotNil(t, body["bounds"])

	status, body = do(t, app, fiber.MethodGet, "/energy/Electricity/date-ranges", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "no_meters", body["code"])

	status, body = do(t, app, fiber.MethodGet, "/energy/Electricity_X/date-ranges?meters=M1", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "unknown_energy_type", body["code"])
}

func TestUsageRoute(t *testing.T) {
	app := newTestApp(t, "")

	status, body := do(t, app, fiber.MethodGet, "/energy/Electricity/usage?meters=M1&from=2024-01-01&to=2024-01-02", "")
	require.Equal(t, fiber.StatusOK, status)
	usage := body["usage"].([]any)
	require.Len(t, usage, 1)
	assert.Equal(t, 3.0, usage[0].(map[string]any)["total"])

	status, body = do(t, app, fiber.MethodGet, "/energy/Electricity/usage?meters=M1&from=2024-01-01&to=2024-01-09", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "window_out_of_range", body["code"])
}

func TestMetersAndLogsRoutes(t *testing.T) {
	app := newTestApp(t, "")

	status, body := do(t, app, fiber.MethodGet, "/energy/Water/meters", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []any{"Library"}, body["buildings"])

	status, body = do(t, app, fiber.MethodGet, "/energy/Water/logs", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body["files"])

	status, body = do(t, app, fiber.MethodGet, "/energy/Water/logs/missing.log", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "log_not_found", body["code"])

	status, body = do(t, app, fiber.MethodPost, "/energy/Water/logs/archive", "")
	assert.Equal(t, fiber.StatusNotImplemented, status)
	assert.Equal(t, "cloud_disabled", body["code"])
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"M1", "M2"}, splitList(" M1, ,M2,"))
	assert.Nil(t, splitList(""))
}
