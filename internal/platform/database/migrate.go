package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"libraryapi/db"
)

// Migrate runs a goose command against the embedded migrations of dialect
// ("postgres" or "mysql").
func Migrate(ctx context.Context, conn *sql.DB, dialect, command string) error {
	goose.SetBaseFS(db.Migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return errors.Wrapf(err, "set dialect %s", dialect)
	}
	dir := db.MigrationsDir(dialect)

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, conn, dir)
	case "down":
		err = goose.DownContext(ctx, conn, dir)
	case "reset":
		err = goose.ResetContext(ctx, conn, dir)
	case "status":
		err = goose.StatusContext(ctx, conn, dir)
	case "version":
		err = goose.VersionContext(ctx, conn, dir)
	default:
		return errors.Errorf("unknown migration command %q", command)
	}
	return errors.Wrapf(err, "goose %s", command)
}
