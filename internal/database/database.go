package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

func Connect() (*sqlx.DB, error) {
	return Open(viper.GetString("DB_DRIVER"), viper.GetString("DB_DSN"))
}

// Open connects with the given driver and pings until the database answers
// or the retry budget runs out.
func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres:
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// a single writer keeps ":memory:" databases on one connection
		db.SetMaxOpenConns(1)
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(backoff.WithMaxInterval(2*time.Second)), 5)
	err = backoff.RetryNotify(db.Ping, bo, func(err error, next time.Duration) {
		log.Warn().Err(err).Str("driver", driver).Dur("retry_in", next).Msg("db ping failed")
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// sqliteDSN makes every transaction take the write lock on BEGIN, which
// serializes writers of the same cell.
func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_txlock=immediate&_busy_timeout=5000"
}
