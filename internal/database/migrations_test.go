package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rapidcart/catalog/internal/models"
)

func TestAutoMigrateIsIdempotent(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, AutoMigrate(db))
	// Initialising an existing schema must be a no-op, not an error.
	require.NoError(t, AutoMigrate(db))

	require.True(t, db.Migrator().HasTable(&models.Record{}))
	require.True(t, db.Migrator().HasTable(&models.CacheEntry{}))
	require.True(t, db.Migrator().HasTable(&models.EventLog{}))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
}

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User:     "postgres",
		Password: "password",
		Name:     "catalog_db",
		Host:     "db.internal",
		Port:     5433,
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=db.internal")
	require.Contains(t, dsn, "port=5433")
	require.Contains(t, dsn, "dbname=catalog_db")
	require.Contains(t, dsn, "sslmode=disable")
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "root", Name: "catalog_db"})
	require.NoError(t, err)
	require.Contains(t, dsn, "root@tcp(127.0.0.1:3306)/catalog_db")
	require.Contains(t, dsn, "parseTime=True")
}
