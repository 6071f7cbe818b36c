// Package db embeds the schema migrations for every supported dialect.
package db

import "embed"

// Migrations holds migrations/postgres and migrations/mysql.
//
//go:embed migrations/postgres/*.sql migrations/mysql/*.sql
var Migrations embed.FS

// MigrationsDir returns the embedded directory for a goose dialect.
func MigrationsDir(dialect string) string {
	return "migrations/" + dialect
}
