package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/database"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/domain"
)

const dateTimeColumn = "DateTime"

type Repos struct {
	db *sqlx.DB
	d  dialect
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db, d: dialect{driver: db.DriverName()}} }

// ListMeters returns the building/meter map of an energy type.
func (r *Repos) ListMeters(ctx context.Context, et domain.EnergyType) ([]domain.Meter, error) {
	query := r.d.builder().Select(quote("Building"), quote("Meter")).
		Distinct().
		From(quote(et.MeterMapTable())).
		OrderBy(quote("Building"), quote("Meter"))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	var out []domain.Meter
	if err := sqlx.SelectContext(ctx, r.db, &out, sqlStr, args...); err != nil {
		if isUndefinedTable(err) {
			return nil, fmt.Errorf("%w: %q has no meter map", domain.ErrUnknownEnergyType, et.Table)
		}
		return nil, fmt.Errorf("list meters of %s: %w", et, err)
	}
	return out, nil
}

// MeterDateRange returns the first and last timestamp at which the meter has
// a raw value. ok is false when the column is entirely NULL.
func (r *Repos) MeterDateRange(ctx context.Context, et domain.EnergyType, meterID string) (dr domain.DateRange, ok bool, err error) {
	query := r.d.builder().
		Select("MIN("+quote(dateTimeColumn)+")", "MAX("+quote(dateTimeColumn)+")").
		From(quote(et.Table)).
		Where(quote(meterID) + " IS NOT NULL")

	var lo, hi nullTime
	if err := scanRow(ctx, r.db, query, &lo, &hi); err != nil {
		return dr, false, fmt.Errorf("date range of %s.%s: %w", et, meterID, err)
	}
	if !lo.Valid || !hi.Valid {
		return dr, false, nil
	}
	return domain.DateRange{Earliest: lo.Time, Latest: hi.Time}, true, nil
}

// ListTimestamps returns, ascending, every timestamp where the meter has a value.
func (r *Repos) ListTimestamps(ctx context.Context, et domain.EnergyType, meterID string) ([]time.Time, error) {
	query := r.d.builder().Select(quote(dateTimeColumn)).
		Distinct().
		From(quote(et.Table)).
		Where(quote(meterID) + " IS NOT NULL").
		OrderBy(quote(dateTimeColumn))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryxContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("timestamps of %s.%s: %w", et, meterID, err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var ts nullTime
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		if ts.Valid {
			out = append(out, ts.Time)
		}
	}
	return out, rows.Err()
}

// ReadValue is the point read of one cell outside any transaction.
func (r *Repos) ReadValue(ctx context.Context, et domain.EnergyType, ts time.Time, meterID string) (float64, error) {
	return readCell(ctx, r.db, r.d, et, ts, meterID, false)
}

// Readings returns raw and usage values of the meters for every row in
// [from, until), one Reading per meter per timestamp.
func (r *Repos) Readings(ctx context.Context, et domain.EnergyType, meterIDs []string, from, until time.Time) ([]domain.Reading, error) {
	cols := make([]string, 0, 1+2*len(meterIDs))
	cols = append(cols, quote(dateTimeColumn))
	for _, m := range meterIDs {
		cols = append(cols, quote(m), quote(domain.UsageColumn(m)))
	}

	query := r.d.builder().Select(cols...).
		From(quote(et.Table)).
		Where(sq.And{
			sq.GtOrEq{quote(dateTimeColumn): r.d.bindTime(from)},
			sq.Lt{quote(dateTimeColumn): r.d.bindTime(until)},
		}).
		OrderBy(quote(dateTimeColumn))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryxContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("readings of %s: %w", et, err)
	}
	defer rows.Close()

	var out []domain.Reading
	for rows.Next() {
		var ts nullTime
		vals := make([]sql.NullFloat64, 2*len(meterIDs))
		dest := make([]any, 0, 1+len(vals))
		dest = append(dest, &ts)
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, m := range meterIDs {
			out = append(out, domain.Reading{
				EnergyType: et.Table,
				MeterID:    m,
				Timestamp:  ts.Time,
				Raw:        floatPtr(vals[2*i]),
				Usage:      floatPtr(vals[2*i+1]),
			})
		}
	}
	return out, rows.Err()
}

// InTx runs fn inside one transaction. The transaction is rolled back on every
// path except a nil return from fn followed by a successful commit.
func (r *Repos) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{tx: sqlTx, d: r.d}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Tx is the typed cell accessor available inside InTx.
type Tx struct {
	tx *sqlx.Tx
	d  dialect
}

// LockValue reads a cell and, where the database supports it, locks its row
// until the transaction ends.
func (t *Tx) LockValue(ctx context.Context, et domain.EnergyType, ts time.Time, meterID string) (float64, error) {
	return readCell(ctx, t.tx, t.d, et, ts, meterID, true)
}

func (t *Tx) Value(ctx context.Context, et domain.EnergyType, ts time.Time, meterID string) (float64, error) {
	return readCell(ctx, t.tx, t.d, et, ts, meterID, false)
}

// SetValue writes a cell and reports how many rows were touched.
func (t *Tx) SetValue(ctx context.Context, et domain.EnergyType, ts time.Time, meterID string, v float64) (int64, error) {
	sqlStr, args, err := updateCell(t.d, et, ts, meterID, v).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := t.tx.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("update %s.%s: %w", et, meterID, err)
	}
	return res.RowsAffected()
}

// selectCell reads one meter column at a timestamp, locking the row when
// asked and supported.
func selectCell(d dialect, et domain.EnergyType, ts time.Time, meterID string, lock bool) sq.SelectBuilder {
	query := d.builder().Select(quote(meterID)).
		From(quote(et.Table)).
		Where(sq.Eq{quote(dateTimeColumn): d.bindTime(ts)}).
		Limit(1)
	if lock && d.rowLocks() {
		query = query.Suffix("FOR UPDATE")
	}
	return query
}

func updateCell(d dialect, et domain.EnergyType, ts time.Time, meterID string, v float64) sq.UpdateBuilder {
	return d.builder().Update(quote(et.Table)).
		Set(quote(meterID), v).
		Where(sq.Eq{quote(dateTimeColumn): d.bindTime(ts)})
}

func readCell(ctx context.Context, q sqlx.QueryerContext, d dialect, et domain.EnergyType, ts time.Time, meterID string, lock bool) (float64, error) {
	var v sql.NullFloat64
	if err := scanRow(ctx, q, selectCell(d, et, ts, meterID, lock), &v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s.%s at %s", domain.ErrNotFound, et, meterID, ts.Format(domain.TimestampLayout))
		}
		return 0, fmt.Errorf("read %s.%s: %w", et, meterID, err)
	}
	if !v.Valid {
		return 0, fmt.Errorf("%w: %s.%s is empty at %s", domain.ErrNotFound, et, meterID, ts.Format(domain.TimestampLayout))
	}
	return v.Float64, nil
}

func scanRow(ctx context.Context, q sqlx.QueryerContext, query sq.Sqlizer, dest ...any) error {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}
	return q.QueryRowxContext(ctx, sqlStr, args...).Scan(dest...)
}

// dialect covers the differences between the sqlite and postgres drivers.
type dialect struct {
	driver string
}

func (d dialect) builder() sq.StatementBuilderType {
	if d.driver == database.DriverPostgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// rowLocks reports support for SELECT ... FOR UPDATE. SQLite serializes
// writers at BEGIN instead (see database.Open).
func (d dialect) rowLocks() bool { return d.driver == database.DriverPostgres }

// bindTime formats timestamps the way sqlite tables store them as text.
func (d dialect) bindTime(t time.Time) any {
	if d.driver == database.DriverPostgres {
		return t
	}
	return t.UTC().Format(domain.TimestampLayout)
}

// isUndefinedTable reports a query against a table that does not exist.
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return strings.Contains(liteErr.Error(), "no such table")
	}
	return false
}

// quote makes an identifier safe to embed. Identifiers reaching here have
// already been checked against the meter map or ParseEnergyType.
func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
