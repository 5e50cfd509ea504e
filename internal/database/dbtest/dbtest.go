// Package dbtest provides seeded in-memory databases for tests.
package dbtest

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/database"
)

// Fixture layout:
//
//	Electricity  M1 (Library)  2024-01-01 00:00 .. 2024-01-02 00:00
//	             M2 (Library)  2024-01-01 01:00 .. 2024-01-03 12:00
//	             M3 (Gym)      no readings
//	Water        W1 (Library)  2024-02-01 00:00 .. 2024-02-01 01:00
const schema = `
CREATE TABLE "Electricity" (
	"DateTime" TEXT PRIMARY KEY,
	"M1" REAL, "M1_Usage" REAL,
	"M2" REAL, "M2_Usage" REAL,
	"M3" REAL, "M3_Usage" REAL
);
CREATE TABLE "Electricity_meter_building_map" ("Building" TEXT NOT NULL, "Meter" TEXT NOT NULL);

CREATE TABLE "Water" (
	"DateTime" TEXT PRIMARY KEY,
	"W1" REAL, "W1_Usage" REAL
);
CREATE TABLE "Water_meter_building_map" ("Building" TEXT NOT NULL, "Meter" TEXT NOT NULL);
`

const seed = `
INSERT INTO "Electricity" ("DateTime", "M1", "M1_Usage", "M2", "M2_Usage") VALUES
	('2024-01-01 00:00:00', 100.0, NULL, NULL,  NULL),
	('2024-01-01 01:00:00', 101.5, 1.5,  50.0,  NULL),
	('2024-01-02 00:00:00', 103.0, 1.5,  50.75, 0.75),
	('2024-01-03 12:00:00', NULL,  NULL, 51.0,  0.25);
INSERT INTO "Electricity_meter_building_map" ("Building", "Meter") VALUES
	('Library', 'M1'), ('Library', 'M2'), ('Gym', 'M3');

INSERT INTO "Water" ("DateTime", "W1", "W1_Usage") VALUES
	('2024-02-01 00:00:00', 10.0, NULL),
	('2024-02-01 01:00:00', 12.5, 2.5);
INSERT INTO "Water_meter_building_map" ("Building", "Meter") VALUES ('Library', 'W1');
`

// Open returns a seeded sqlite database that is closed when the test ends.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	db.MustExec(schema)
	db.MustExec(seed)
	return db
}
