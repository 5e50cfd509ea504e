package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnergyType_PrefixRouting(t *testing.T) {
	cases := map[string]Partition{
		"Electricity":   Electricity,
		"Electricity_X": Electricity,
		"electricity":   Electricity,
		"WATER_2023":    Water,
		"Gas":           Gas,
		"gasMeters":     Gas,
	}
	for name, want := range cases {
		et, err := ParseEnergyType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, et.Partition, name)
		assert.Equal(t, name, et.Table)
	}
}

func TestParseEnergyType_Rejects(t *testing.T) {
	for _, name := range []string{"", "Steam", "X_Electricity", "Electricity; DROP TABLE x", `Gas"`} {
		_, err := ParseEnergyType(name)
		assert.ErrorIs(t, err, ErrUnknownEnergyType, name)
	}
}

func TestMeterMapTable(t *testing.T) {
	et, err := ParseEnergyType("Water")
	require.NoError(t, err)
	assert.Equal(t, "Water_meter_building_map", et.MeterMapTable())
	assert.Equal(t, "W1_Usage", UsageColumn("W1"))
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024-01-01T00:00", "2024-01-01 00:00:00", "2024-01-01T00:00:00Z", " 2024-01-01 00:00 "} {
		got, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}

	zoned, err := ParseTimestamp("2024-01-01T02:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, want, zoned)
	assert.Equal(t, time.UTC, zoned.Location())

	_, err = ParseTimestamp("yesterday")
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestDateRanges_Bounds(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	ranges := DateRanges{
		"M1": {Earliest: day(3), Latest: day(10)},
		"M2": {Earliest: day(1), Latest: day(5)},
	}

	b, ok := ranges.Bounds()
	require.True(t, ok)
	assert.Equal(t, day(1), b.Earliest)
	assert.Equal(t, day(10), b.Latest)

	_, ok = DateRanges{}.Bounds()
	assert.False(t, ok)
}

func TestDateRanges_ValidateWindow(t *testing.T) {
	ranges := DateRanges{
		"M1": {
			Earliest: time.Date(2024, 1, 1, 6, 30, 0, 0, time.UTC),
			Latest:   time.Date(2024, 1, 31, 18, 0, 0, 0, time.UTC),
		},
	}
	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }

	// whole first and last days are selectable even though readings start mid-day
	assert.NoError(t, ranges.ValidateWindow(day(1, 1), day(1, 31)))
	assert.NoError(t, ranges.ValidateWindow(day(1, 10), day(1, 10)))

	assert.ErrorIs(t, ranges.ValidateWindow(day(12, 31).AddDate(-1, 0, 0), day(1, 5)), ErrWindowOutOfRange)
	assert.ErrorIs(t, ranges.ValidateWindow(day(1, 5), day(2, 1)), ErrWindowOutOfRange)
	assert.ErrorIs(t, ranges.ValidateWindow(day(1, 20), day(1, 10)), ErrWindowOutOfRange)
	assert.ErrorIs(t, DateRanges{}.ValidateWindow(day(1, 1), day(1, 2)), ErrWindowOutOfRange)
}

func TestAuditWriteError_MatchesBothSentinels(t *testing.T) {
	cause := errors.Join(ErrLogWriteFailed, errors.New("disk full"))
	err := error(&AuditWriteError{EnergyType: "Gas", MeterID: "G1", Value: 2, Err: cause})

	assert.ErrorIs(t, err, ErrAuditWriteFailed)
	assert.ErrorIs(t, err, ErrLogWriteFailed)
	assert.NotErrorIs(t, err, ErrUpdateFailed)

	var awe *AuditWriteError
	require.ErrorAs(t, err, &awe)
	assert.Equal(t, 2.0, awe.Value)
}
