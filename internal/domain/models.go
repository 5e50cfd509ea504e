package domain

import "time"

// Meter is one named data column of an energy table, owned by a building.
type Meter struct {
	Building string `db:"Building" json:"building"`
	Meter    string `db:"Meter" json:"meter"`
}

// Reading is a single meter's values at one timestamp. Usage is derived
// upstream from Raw and is never recomputed here.
type Reading struct {
	EnergyType string    `json:"energy_type"`
	MeterID    string    `json:"meter"`
	Timestamp  time.Time `json:"timestamp"`
	Raw        *float64  `json:"raw"`
	Usage      *float64  `json:"usage"`
}

// Actor is who made a change. Both fields end up verbatim in the audit log,
// so neither may contain control characters.
type Actor struct {
	Name  string `json:"name" validate:"required,nocontrol"`
	Email string `json:"email" validate:"required,email,nocontrol"`
}

// AuditRecord describes one applied change to a reading cell.
type AuditRecord struct {
	ChangedAt  time.Time `json:"changed_at"`
	Actor      Actor     `json:"actor"`
	EnergyType string    `json:"energy_type"`
	MeterID    string    `json:"meter"`
	ObservedAt time.Time `json:"observed_at"`
	OldValue   float64   `json:"old_value"`
	NewValue   float64   `json:"new_value"`
}

// MeterUsage is the total derived usage of one meter over a window.
type MeterUsage struct {
	Building string  `json:"building,omitempty"`
	MeterID  string  `json:"meter"`
	Total    float64 `json:"total"`
	Points   int     `json:"points"`
}
