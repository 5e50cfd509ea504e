package service

import (
	"context"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/domain"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/repository"
)

// RangeService resolves the timestamps each meter has readings for.
type RangeService struct {
	repos  *repository.Repos
	meters *meterIndex
}

// ResolveDateRanges returns the coverage of every requested meter. Meters
// whose raw column is entirely empty are left out of the result.
func (s *RangeService) ResolveDateRanges(ctx context.Context, energyType string, ids []string) (domain.DateRanges, error) {
	et, err := domain.ParseEnergyType(energyType)
	if err != nil {
		return nil, err
	}
	ms, err := s.meters.require(ctx, et, ids)
	if err != nil {
		return nil, err
	}

	return resolveRanges(ctx, s.repos, et, ms)
}

func resolveRanges(ctx context.Context, repos *repository.Repos, et domain.EnergyType, ms []domain.Meter) (domain.DateRanges, error) {
	out := make(domain.DateRanges, len(ms))
	for _, m := range ms {
		dr, ok, err := repos.MeterDateRange(ctx, et, m.Meter)
		if err != nil {
			return nil, err
		}
		if ok {
			out[m.Meter] = dr
		}
	}
	return out, nil
}
