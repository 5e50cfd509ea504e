package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no row exists at the timestamp or the
	// meter column holds no value there.
	ErrNotFound = errors.New("no value at key")

	// ErrNoChangeRequired is returned when the proposed value equals the
	// stored one within Epsilon. Nothing is written or logged.
	ErrNoChangeRequired = errors.New("no change required")

	ErrUnknownEnergyType = errors.New("unknown energy type")
	ErrUnknownMeter      = errors.New("unknown meter")
	ErrNoMeters          = errors.New("at least one meter is required")
	ErrInvalidActor      = errors.New("actor name and a valid email are required")

	// ErrUpdateFailed is returned when the write did not persist as expected.
	// The row is left unchanged.
	ErrUpdateFailed = errors.New("update failed")

	// ErrAuditWriteFailed is returned by the entry editor when the data
	// change committed but its audit line could not be written.
	ErrAuditWriteFailed = errors.New("update committed but audit write failed")

	// ErrLogWriteFailed is returned by the audit logger on any I/O error.
	ErrLogWriteFailed = errors.New("audit log write failed")

	ErrLogFileNotFound  = errors.New("log file not found")
	ErrWindowOutOfRange = errors.New("selected date range is outside the available data range")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrCloudDisabled    = errors.New("cloud services not enabled")
)

// AuditWriteError reports an update that committed without an audit line.
// Value holds the verified post-write value.
type AuditWriteError struct {
	EnergyType string
	MeterID    string
	Value      float64
	Err        error
}

func (e *AuditWriteError) Error() string {
	return fmt.Sprintf("%s.%s committed as %v but audit write failed: %v",
		e.EnergyType, e.MeterID, e.Value, e.Err)
}

func (e *AuditWriteError) Unwrap() []error {
	return []error{ErrAuditWriteFailed, e.Err}
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnknownEnergyType) ||
		errors.Is(err, ErrUnknownMeter) ||
		errors.Is(err, ErrNoMeters) ||
		errors.Is(err, ErrInvalidActor) ||
		errors.Is(err, ErrWindowOutOfRange) ||
		errors.Is(err, ErrInvalidTimestamp)
}
