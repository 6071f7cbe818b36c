package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsDir_EnvOverride(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "/custom/migrations")

	assert.Equal(t, filepath.Join("/custom/migrations", "mysql"), migrationsDir("mysql"))
}

func TestMigrationsDir_Default(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "")

	assert.Equal(t, filepath.Join("db", "migrations", "postgres"), migrationsDir("postgres"))
}

func TestResolveDialect(t *testing.T) {
	t.Setenv("MIGRATIONS_DIALECT", "")
	d, err := resolveDialect("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d)

	t.Setenv("MIGRATIONS_DIALECT", "MySQL")
	d, err = resolveDialect("")
	require.NoError(t, err)
	assert.Equal(t, "mysql", d)

	d, err = resolveDialect("postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d, "flag wins over the environment")

	_, err = resolveDialect("sqlite")
	assert.Error(t, err)
}
