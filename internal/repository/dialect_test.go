package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/database"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/domain"
)

var (
	electricity = domain.EnergyType{Table: "Electricity", Partition: domain.Electricity}
	jan1        = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

func TestSelectCell_Postgres(t *testing.T) {
	d := dialect{driver: database.DriverPostgres}

	sqlStr, args, err := selectCell(d, electricity, jan1, "M1", true).ToSql()
	require.NoError(t, err)
	assert.Equal(t, `SELECT "M1" FROM "Electricity" WHERE "DateTime" = $1 LIMIT 1 FOR UPDATE`, sqlStr)
	assert.Equal(t, []any{jan1}, args)

	sqlStr, _, err = selectCell(d, electricity, jan1, "M1", false).ToSql()
	require.NoError(t, err)
	assert.Equal(t, `SELECT "M1" FROM "Electricity" WHERE "DateTime" = $1 LIMIT 1`, sqlStr)
}

func TestSelectCell_SQLite(t *testing.T) {
	d := dialect{driver: database.DriverSQLite}
	eet := time.FixedZone("EET", 2*60*60)

	sqlStr, args, err := selectCell(d, electricity, jan1.In(eet), "M1", true).ToSql()

	require.NoError(t, err)
	assert.Equal(t, `SELECT "M1" FROM "Electricity" WHERE "DateTime" = ? LIMIT 1`, sqlStr)
	assert.Equal(t, []any{"2024-01-01 00:00:00"}, args)
}

func TestUpdateCell(t *testing.T) {
	sqlStr, args, err := updateCell(dialect{driver: database.DriverPostgres}, electricity, jan1, "M1", 105.5).ToSql()
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "Electricity" SET "M1" = $1 WHERE "DateTime" = $2`, sqlStr)
	assert.Equal(t, []any{105.5, jan1}, args)

	sqlStr, args, err = updateCell(dialect{driver: database.DriverSQLite}, electricity, jan1, "M1", 105.5).ToSql()
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "Electricity" SET "M1" = ? WHERE "DateTime" = ?`, sqlStr)
	assert.Equal(t, []any{105.5, "2024-01-01 00:00:00"}, args)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"M1"`, quote("M1"))
	assert.Equal(t, `"M1"" = 0; --"`, quote(`M1" = 0; --`))
}
