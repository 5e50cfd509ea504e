package service

import (
	"context"
	"sort"
	"time"

	"github.com/ANIKETSHETTY47/energy-grid-analytics-go/aggregator"
	"github.com/shopspring/decimal"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/domain"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/repository"
)

// MeterMap lists buildings and the meters each one owns.
type MeterMap struct {
	Buildings []string            `json:"buildings"`
	Meters    map[string][]string `json:"meters"`
}

// ReadingService serves the read-only views over an energy table.
type ReadingService struct {
	repos  *repository.Repos
	meters *meterIndex
}

func (s *ReadingService) ListMeters(ctx context.Context, energyType string) (*MeterMap, error) {
	et, err := domain.ParseEnergyType(energyType)
	if err != nil {
		return nil, err
	}
	ms, err := s.repos.ListMeters(ctx, et)
	if err != nil {
		return nil, err
	}

	out := &MeterMap{Buildings: []string{}, Meters: map[string][]string{}}
	for _, m := range ms {
		if _, ok := out.Meters[m.Building]; !ok {
			out.Buildings = append(out.Buildings, m.Building)
		}
		out.Meters[m.Building] = append(out.Meters[m.Building], m.Meter)
	}
	sort.Strings(out.Buildings)
	return out, nil
}

// Timestamps lists the times at which meterID has a value, oldest first.
func (s *ReadingService) Timestamps(ctx context.Context, energyType, meterID string) ([]time.Time, error) {
	et, err := domain.ParseEnergyType(energyType)
	if err != nil {
		return nil, err
	}
	if _, err := s.meters.require(ctx, et, []string{meterID}); err != nil {
		return nil, err
	}
	return s.repos.ListTimestamps(ctx, et, meterID)
}

// Readings returns raw and usage values of the meters for the calendar days
// from..to inclusive. The window must lie within the meters' combined range.
func (s *ReadingService) Readings(ctx context.Context, energyType string, ids []string, from, to time.Time) ([]domain.Reading, error) {
	et, ms, err := s.window(ctx, energyType, ids, from, to)
	if err != nil {
		return nil, err
	}
	return s.repos.Readings(ctx, et, meterIDs(ms), domain.Day(from), domain.NextDay(to))
}

// TotalUsage sums the derived usage column of each meter over the window,
// rounded to two decimals.
func (s *ReadingService) TotalUsage(ctx context.Context, energyType string, ids []string, from, to time.Time) ([]domain.MeterUsage, error) {
	et, ms, err := s.window(ctx, energyType, ids, from, to)
	if err != nil {
		return nil, err
	}
	rows, err := s.repos.Readings(ctx, et, meterIDs(ms), domain.Day(from), domain.NextDay(to))
	if err != nil {
		return nil, err
	}

	points := make(map[string][]aggregator.Point, len(ms))
	for _, r := range rows {
		if r.Usage == nil {
			continue
		}
		points[r.MeterID] = append(points[r.MeterID], aggregator.Point{Value: *r.Usage, Timestamp: r.Timestamp})
	}

	out := make([]domain.MeterUsage, 0, len(ms))
	for _, m := range ms {
		total := decimal.NewFromFloat(aggregator.Sum(points[m.Meter])).Round(2)
		out = append(out, domain.MeterUsage{
			Building: m.Building,
			MeterID:  m.Meter,
			Total:    total.InexactFloat64(),
			Points:   len(points[m.Meter]),
		})
	}
	return out, nil
}

func (s *ReadingService) window(ctx context.Context, energyType string, ids []string, from, to time.Time) (domain.EnergyType, []domain.Meter, error) {
	et, err := domain.ParseEnergyType(energyType)
	if err != nil {
		return et, nil, err
	}
	ms, err := s.meters.require(ctx, et, ids)
	if err != nil {
		return et, nil, err
	}

	ranges, err := resolveRanges(ctx, s.repos, et, ms)
	if err != nil {
		return et, nil, err
	}
	if err := ranges.ValidateWindow(from, to); err != nil {
		return et, nil, err
	}
	return et, ms, nil
}
