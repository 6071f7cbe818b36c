package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var dialects = []string{"postgres", "mysql"}

func resolveDialect(flagValue string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(flagValue))
	if d == "" {
		d = strings.ToLower(strings.TrimSpace(os.Getenv("MIGRATIONS_DIALECT")))
	}
	if d == "" {
		d = "postgres"
	}
	for _, known := range dialects {
		if d == known {
			return d, nil
		}
	}
	return "", errors.Errorf("unknown dialect %q (postgres or mysql)", d)
}

// migrationsDir is the on-disk directory new migrations are created in.
func migrationsDir(dialect string) string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return filepath.Join(v, dialect)
	}
	return filepath.Join("db", "migrations", dialect)
}
