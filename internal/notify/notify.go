// Package notify publishes applied entry changes to downstream listeners.
// Delivery is best effort: the audit log stays the record of truth.
package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/domain"
)

// Event is one applied and audited entry change.
type Event struct {
	ID        string             `json:"id"`
	Partition domain.Partition   `json:"partition"`
	Record    domain.AuditRecord `json:"record"`
}

func NewEvent(p domain.Partition, rec domain.AuditRecord) Event {
	return Event{ID: uuid.NewString(), Partition: p, Record: rec}
}

type Sink interface {
	Name() string
	Publish(ctx context.Context, ev Event) error
}

// Fanout publishes every event to all of its sinks concurrently.
type Fanout struct {
	sinks []Sink
}

func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Len() int { return len(f.sinks) }

// Publish waits for every sink and returns the first failure. A failing
// sink does not stop the others and each failure is logged.
func (f *Fanout) Publish(ctx context.Context, ev Event) error {
	var g errgroup.Group
	for _, s := range f.sinks {
		g.Go(func() error {
			if err := s.Publish(ctx, ev); err != nil {
				log.Warn().Err(err).Str("sink", s.Name()).Str("event", ev.ID).Msg("change notification failed")
				return fmt.Errorf("%s: %w", s.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
