package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/audit"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/cloud"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/domain"
)

// LogService exposes the partition log files for viewing and archiving.
type LogService struct {
	audit    *audit.Logger
	archiver Archiver
	history  UpdateHistory
	now      func() time.Time
}

func (s *LogService) ListFiles(energyType string) ([]audit.LogFile, error) {
	et, err := domain.ParseEnergyType(energyType)
	if err != nil {
		return nil, err
	}
	return s.audit.ListFiles(et.Partition)
}

// Read returns the lines of a log file, most recent first.
func (s *LogService) Read(energyType, name string) ([]string, error) {
	et, err := domain.ParseEnergyType(energyType)
	if err != nil {
		return nil, err
	}
	return s.audit.ReadNewestFirst(et.Partition, name)
}

// Archive uploads a copy of the partition's entry update log.
func (s *LogService) Archive(ctx context.Context, energyType string) (string, error) {
	if s.archiver == nil {
		return "", domain.ErrCloudDisabled
	}
	et, err := domain.ParseEnergyType(energyType)
	if err != nil {
		return "", err
	}
	path := s.audit.Path(et.Partition)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", domain.ErrLogFileNotFound, path)
	}
	return s.archiver.ArchiveFile(ctx, string(et.Partition), path, s.now())
}

// RecentUpdates reads the newest mirrored changes of the partition.
func (s *LogService) RecentUpdates(ctx context.Context, energyType string, limit int32) ([]cloud.EntryUpdate, error) {
	if s.history == nil {
		return nil, domain.ErrCloudDisabled
	}
	et, err := domain.ParseEnergyType(energyType)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.history.RecentUpdates(ctx, et.Partition, limit)
}
