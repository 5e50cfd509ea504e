package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/audit"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/cloud"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/domain"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/notify"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/repository"
)

// Archiver stores a copy of an audit log outside the host.
type Archiver interface {
	ArchiveFile(ctx context.Context, partition, path string, at time.Time) (string, error)
}

// UpdateHistory serves recent entry changes from the cloud mirror.
type UpdateHistory interface {
	RecentUpdates(ctx context.Context, p domain.Partition, limit int32) ([]cloud.EntryUpdate, error)
}

type Services struct {
	Repos    *repository.Repos
	Ranges   *RangeService
	Entries  *EntryEditor
	Readings *ReadingService
	Logs     *LogService
}

type options struct {
	sinks    []notify.Sink
	archiver Archiver
	history  UpdateHistory
	now      func() time.Time
}

type Option func(*options)

// WithSinks adds change notification sinks to the entry editor.
func WithSinks(sinks ...notify.Sink) Option {
	return func(o *options) { o.sinks = append(o.sinks, sinks...) }
}

func WithArchiver(a Archiver) Option { return func(o *options) { o.archiver = a } }

func WithUpdateHistory(h UpdateHistory) Option { return func(o *options) { o.history = h } }

// WithClock overrides the wall clock used for audit timestamps.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func New(db *sqlx.DB, auditLog *audit.Logger, opts ...Option) *Services {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	repos := repository.New(db)
	meters := &meterIndex{repos: repos}
	return &Services{
		Repos:  repos,
		Ranges: &RangeService{repos: repos, meters: meters},
		Entries: &EntryEditor{
			repos:  repos,
			meters: meters,
			audit:  auditLog,
			sinks:  notify.NewFanout(o.sinks...),
			now:    o.now,
		},
		Readings: &ReadingService{repos: repos, meters: meters},
		Logs: &LogService{
			audit:    auditLog,
			archiver: o.archiver,
			history:  o.history,
			now:      o.now,
		},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("nocontrol", func(fl validator.FieldLevel) bool {
		return !domain.HasControl(fl.Field().String())
	})
	return v
}

// meterIndex is the allow-list of meter columns, read from the building map.
// Only names that pass it are ever used as column identifiers.
type meterIndex struct {
	repos *repository.Repos
}

// require returns the map entries of ids in request order, failing on the
// first id that is not a known meter of et.
func (m *meterIndex) require(ctx context.Context, et domain.EnergyType, ids []string) ([]domain.Meter, error) {
	if len(ids) == 0 {
		return nil, domain.ErrNoMeters
	}
	known, err := m.repos.ListMeters(ctx, et)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Meter, len(known))
	for _, km := range known {
		byID[km.Meter] = km
	}

	out := make([]domain.Meter, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		km, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q in %s", domain.ErrUnknownMeter, id, et)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, km)
	}
	return out, nil
}

func meterIDs(ms []domain.Meter) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Meter
	}
	return out
}
