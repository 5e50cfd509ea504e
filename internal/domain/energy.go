package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Partition is the audit log bucket an energy table belongs to.
type Partition string

const (
	Electricity Partition = "electricity"
	Water       Partition = "water"
	Gas         Partition = "gas"
)

// Partitions lists every audit partition in display order.
var Partitions = []Partition{Electricity, Water, Gas}

// Epsilon is the tolerance under which two readings are considered equal.
const Epsilon = 1e-6

var identRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// EnergyType names an energy table and the audit partition it logs to.
type EnergyType struct {
	Table     string
	Partition Partition
}

// ParseEnergyType resolves a table name to its partition by case-insensitive
// prefix. "Electricity_X" belongs to the electricity partition.
func ParseEnergyType(name string) (EnergyType, error) {
	p, ok := PartitionOf(name)
	if !ok || !identRe.MatchString(name) {
		return EnergyType{}, fmt.Errorf("%w: %q", ErrUnknownEnergyType, name)
	}
	return EnergyType{Table: name, Partition: p}, nil
}

// PartitionOf returns the partition whose name prefixes name, ignoring case.
func PartitionOf(name string) (Partition, bool) {
	lower := strings.ToLower(name)
	for _, p := range Partitions {
		if strings.HasPrefix(lower, string(p)) {
			return p, true
		}
	}
	return "", false
}

// MeterMapTable is the table listing the (Building, Meter) pairs of t.
func (t EnergyType) MeterMapTable() string {
	return t.Table + "_meter_building_map"
}

func (t EnergyType) String() string { return t.Table }

// UsageColumn is the derived usage column paired with a meter's raw column.
func UsageColumn(meterID string) string {
	return meterID + "_Usage"
}

// HasControl reports whether s holds a control character such as a newline.
func HasControl(s string) bool {
	return strings.ContainsFunc(s, unicode.IsControl)
}
