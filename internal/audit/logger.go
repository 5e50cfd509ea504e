// Package audit keeps the append-only change logs, one directory per energy
// partition.
package audit

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/domain"
)

// EntryUpdatesFile is the log that receives one line per entry change.
const EntryUpdatesFile = "entry_updates.log"

const changedAtLayout = "2006-01-02 15:04:05.000000"

type Logger struct {
	dir string
	mu  sync.Mutex
}

func NewLogger(dir string) *Logger {
	return &Logger{dir: dir}
}

// Dir is the root that holds the partition directories.
func (l *Logger) Dir() string { return l.dir }

// Path returns the entry update log of a partition.
func (l *Logger) Path(p domain.Partition) string {
	return filepath.Join(l.dir, string(p), EntryUpdatesFile)
}

// Append writes rec as one line at the end of the partition selected by
// energyType. Existing content is never touched.
func (l *Logger) Append(energyType string, rec domain.AuditRecord) error {
	p, ok := domain.PartitionOf(energyType)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownEnergyType, energyType)
	}
	line := FormatLine(rec)
	path := l.Path(p)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLogWriteFailed, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLogWriteFailed, err)
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		log.Error().Err(err).Str("path", path).Str("entry", strings.TrimSpace(line)).Msg("audit append failed")
		return fmt.Errorf("%w: %v", domain.ErrLogWriteFailed, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLogWriteFailed, err)
	}

	log.Info().
		Str("partition", string(p)).
		Str("table", rec.EnergyType).
		Str("meter", rec.MeterID).
		Str("actor", rec.Actor.Email).
		Msg("entry update logged")
	return nil
}

// FormatLine renders rec in the entry_updates.log line format.
func FormatLine(rec domain.AuditRecord) string {
	return fmt.Sprintf("%s: %s - %s - changed - %s - %s - %s - from %s to %s\n",
		rec.ChangedAt.Format(changedAtLayout),
		escape(rec.Actor.Name),
		escape(rec.Actor.Email),
		escape(rec.EnergyType),
		escape(rec.MeterID),
		rec.ObservedAt.Format(domain.TimestampLayout),
		FormatValue(rec.OldValue),
		FormatValue(rec.NewValue),
	)
}

// escape keeps a field on one line by quoting control characters.
func escape(s string) string {
	if !domain.HasControl(s) {
		return s
	}
	q := strconv.Quote(s)
	return q[1 : len(q)-1]
}

// FormatValue prints a reading with the shortest exact representation and
// always with a decimal point, so 100 reads back as "100.0".
func FormatValue(v float64) string {
	abs := math.Abs(v)
	if math.IsInf(v, 0) || math.IsNaN(v) || (abs != 0 && (abs < 1e-4 || abs >= 1e16)) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
