package database

import (
	"context"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// OpenMySQL opens a sqlx handle on the MySQL driver. Times are always parsed
// and exchanged in UTC regardless of the DSN.
func OpenMySQL(ctx context.Context, dsn string, cfg PoolConfig) (*sqlx.DB, error) {
	mcfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parse mysql dsn")
	}
	mcfg.ParseTime = true
	mcfg.Loc = time.UTC

	db, err := sqlx.Open("mysql", mcfg.FormatDSN())
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}
	db.SetMaxOpenConns(int(cfg.MaxConns))
	db.SetMaxIdleConns(int(cfg.MinConns))
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "ping mysql (%s)", RedactDSN(dsn))
	}
	return db, nil
}
