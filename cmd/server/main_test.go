package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rapidcart/catalog/internal/app"
)

func TestConvertDatabaseConfigDefaultsToSQLite(t *testing.T) {
	cfg := &app.Config{}
	cfg.Database.Path = " ./data/catalog.sqlite "

	dbCfg := convertDatabaseConfig(cfg)
	assert.Equal(t, "sqlite", dbCfg.Driver)
	assert.Equal(t, "./data/catalog.sqlite", dbCfg.Path)
}

func TestConvertDatabaseConfigNormalisesPostgres(t *testing.T) {
	cfg := &app.Config{}
	cfg.Database.Driver = "PostgreSQL"
	cfg.Database.Postgres = app.DBAuthConfig{
		Host:     "db.internal",
		Port:     5433,
		Database: "catalog",
		Username: "svc",
		Password: "secret",
	}

	dbCfg := convertDatabaseConfig(cfg)
	assert.Equal(t, "postgres", dbCfg.Driver)
	assert.Equal(t, "db.internal", dbCfg.Host)
	assert.Equal(t, 5433, dbCfg.Port)
	assert.Equal(t, "catalog", dbCfg.Name)
	assert.Equal(t, "svc", dbCfg.User)
	assert.Equal(t, "secret", dbCfg.Password)
}

func TestConvertDatabaseConfigKeepsUnknownDriver(t *testing.T) {
	cfg := &app.Config{}
	cfg.Database.Driver = "oracle"

	dbCfg := convertDatabaseConfig(cfg)
	assert.Equal(t, "oracle", dbCfg.Driver)
}

func TestLoadApplicationConfigRejectsMissingPath(t *testing.T) {
	_, err := loadApplicationConfig("/does/not/exist")
	assert.Error(t, err)
}
