package repository

import (
	"fmt"
	"time"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/domain"
)

// nullTime scans DateTime values whether the driver hands back a time.Time
// (postgres, typed sqlite columns) or text (sqlite TEXT columns, aggregates).
type nullTime struct {
	Time  time.Time
	Valid bool
}

func (n *nullTime) Scan(src any) error {
	n.Time, n.Valid = time.Time{}, false
	switch v := src.(type) {
	case nil:
		return nil
	case time.Time:
		n.Time = v.UTC()
	case string:
		t, err := domain.ParseTimestamp(v)
		if err != nil {
			return err
		}
		n.Time = t
	case []byte:
		t, err := domain.ParseTimestamp(string(v))
		if err != nil {
			return err
		}
		n.Time = t
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
	n.Valid = true
	return nil
}
