package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/audit"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/domain"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/notify"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/repository"
)

const notifyTimeout = 5 * time.Second

// EntryEditor changes single reading cells and records every applied change
// in the audit log.
type EntryEditor struct {
	repos  *repository.Repos
	meters *meterIndex
	audit  *audit.Logger
	sinks  *notify.Fanout
	now    func() time.Time
}

// ReadValue returns the raw value of meterID at ts.
func (e *EntryEditor) ReadValue(ctx context.Context, energyType string, ts time.Time, meterID string) (float64, error) {
	et, err := domain.ParseEnergyType(energyType)
	if err != nil {
		return 0, err
	}
	if _, err := e.meters.require(ctx, et, []string{meterID}); err != nil {
		return 0, err
	}
	return e.repos.ReadValue(ctx, et, ts, meterID)
}

// UpdateEntry replaces the value of meterID at ts and returns the value read
// back from the database.
//
// The read, write and read-back run in one transaction holding the row, so
// concurrent editors of a cell are applied one after the other. The audit
// line is written after commit. If it fails the change stays committed and
// the returned error is an *domain.AuditWriteError alongside the new value.
func (e *EntryEditor) UpdateEntry(ctx context.Context, energyType string, ts time.Time, meterID string, newValue float64, actor domain.Actor) (float64, error) {
	et, err := domain.ParseEnergyType(energyType)
	if err != nil {
		return 0, err
	}
	if err := validate.Struct(actor); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidActor, err)
	}
	if math.IsNaN(newValue) || math.IsInf(newValue, 0) {
		return 0, fmt.Errorf("%w: value must be finite", domain.ErrUpdateFailed)
	}
	if _, err := e.meters.require(ctx, et, []string{meterID}); err != nil {
		return 0, err
	}

	var oldValue, verified float64
	err = e.repos.InTx(ctx, func(tx *repository.Tx) error {
		current, err := tx.LockValue(ctx, et, ts, meterID)
		if err != nil {
			return err
		}
		if math.Abs(newValue-current) < domain.Epsilon {
			return domain.ErrNoChangeRequired
		}

		n, err := tx.SetValue(ctx, et, ts, meterID, newValue)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
		}
		if n != 1 {
			return fmt.Errorf("%w: %d rows matched %s", domain.ErrUpdateFailed, n, ts.Format(domain.TimestampLayout))
		}

		got, err := tx.Value(ctx, et, ts, meterID)
		if err != nil {
			return fmt.Errorf("%w: read back: %v", domain.ErrUpdateFailed, err)
		}
		if math.Abs(got-newValue) >= domain.Epsilon {
			return fmt.Errorf("%w: wrote %v, read back %v", domain.ErrUpdateFailed, newValue, got)
		}
		oldValue, verified = current, got
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNoChangeRequired), errors.Is(err, domain.ErrUpdateFailed):
		return 0, err
	default:
		return 0, fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
	}

	rec := domain.AuditRecord{
		ChangedAt:  e.now(),
		Actor:      actor,
		EnergyType: et.Table,
		MeterID:    meterID,
		ObservedAt: ts,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
	if err := e.audit.Append(et.Table, rec); err != nil {
		log.Error().Err(err).
			Str("table", et.Table).
			Str("meter", meterID).
			Time("observed_at", ts).
			Float64("old", oldValue).
			Float64("new", newValue).
			Msg("entry updated without audit line")
		return verified, &domain.AuditWriteError{EnergyType: et.Table, MeterID: meterID, Value: verified, Err: err}
	}

	e.publish(ctx, et, rec)
	return verified, nil
}

func (e *EntryEditor) publish(ctx context.Context, et domain.EnergyType, rec domain.AuditRecord) {
	if e.sinks.Len() == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	// failures are logged per sink by the fanout
	_ = e.sinks.Publish(ctx, notify.NewEvent(et.Partition, rec))
}
