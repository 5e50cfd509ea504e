package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "energy.db?_txlock=immediate&_busy_timeout=5000", sqliteDSN("energy.db"))
	assert.Equal(t, "file:energy.db?mode=rw&_txlock=immediate&_busy_timeout=5000", sqliteDSN("file:energy.db?mode=rw"))
}

func TestOpen(t *testing.T) {
	db, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, DriverSQLite, db.DriverName())

	_, err = Open("oracle", "x")
	assert.Error(t, err)
}
