package service_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/audit"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/cloud"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/domain"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/service"
)

type fakeArchiver struct {
	partition string
	data      string
	at        time.Time
}

func (a *fakeArchiver) ArchiveFile(_ context.Context, partition, path string, at time.Time) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	a.partition, a.data, a.at = partition, string(b), at
	return "audit/" + partition + "/copy.log", nil
}

type fakeHistory struct {
	limit int32
}

func (h *fakeHistory) RecentUpdates(_ context.Context, p domain.Partition, limit int32) ([]cloud.EntryUpdate, error) {
	h.limit = limit
	return []cloud.EntryUpdate{{Partition: string(p), MeterID: "M1"}}, nil
}

func TestLogs_ListAndRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svcs.Entries.UpdateEntry(ctx, "Electricity", jan1, "M1", 101, jane)
	require.NoError(t, err)
	_, err = f.svcs.Entries.UpdateEntry(ctx, "Electricity", jan1, "M1", 102, jane)
	require.NoError(t, err)

	files, err := f.svcs.Logs.ListFiles("Electricity")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, audit.EntryUpdatesFile, files[0].Name)

	lines, err := f.svcs.Logs.Read("Electricity", audit.EntryUpdatesFile)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "from 101.0 to 102.0"))

	_, err = f.svcs.Logs.Read("Electricity", "../../etc/passwd.txt")
	assert.ErrorIs(t, err, domain.ErrLogFileNotFound)
}

func TestLogs_Archive(t *testing.T) {
	arch := &fakeArchiver{}
	f := newFixture(t, service.WithArchiver(arch))
	ctx := context.Background()

	_, err := f.svcs.Logs.Archive(ctx, "Gas")
	assert.ErrorIs(t, err, domain.ErrLogFileNotFound)

	_, err = f.svcs.Entries.UpdateEntry(ctx, "Electricity", jan1, "M1", 101, jane)
	require.NoError(t, err)

	key, err := f.svcs.Logs.Archive(ctx, "Electricity")
	require.NoError(t, err)
	assert.Equal(t, "audit/electricity/copy.log", key)
	assert.Equal(t, "electricity", arch.partition)
	assert.Contains(t, arch.data, "from 100.0 to 101.0")
	assert.Equal(t, clock(), arch.at)
}

func TestLogs_CloudDisabled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svcs.Logs.Archive(ctx, "Electricity")
	assert.ErrorIs(t, err, domain.ErrCloudDisabled)

	_, err = f.svcs.Logs.RecentUpdates(ctx, "Electricity", 5)
	assert.ErrorIs(t, err, domain.ErrCloudDisabled)
}

func TestLogs_RecentUpdatesLimit(t *testing.T) {
	h := &fakeHistory{}
	f := newFixture(t, service.WithUpdateHistory(h))
	ctx := context.Background()

	out, err := f.svcs.Logs.RecentUpdates(ctx, "Water_2024", 5)
	require.NoError(t, err)
	assert.Equal(t, "water", out[0].Partition)
	assert.EqualValues(t, 5, h.limit)

	_, err = f.svcs.Logs.RecentUpdates(ctx, "Water", 0)
	require.NoError(t, err)
	assert.EqualValues(t, 20, h.limit)

	_, err = f.svcs.Logs.RecentUpdates(ctx, "Water", 500)
	require.NoError(t, err)
	assert.EqualValues(t, 20, h.limit)
}
