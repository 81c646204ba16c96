package db

import (
	"embed"
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/diewo77/go-quotes/internal/config"
	"github.com/diewo77/go-quotes/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var requiredTables = []string{"users", "clients", "quotes", "quote_items"}

// Migrate runs AutoMigrate for all models.
func Migrate(gdb *gorm.DB) error {
	for _, m := range models.All() {
		if err := gdb.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// MigrateSQL applies the embedded SQL migrations to a postgres database.
func MigrateSQL(dsn string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, ToURLDSN(NormalizeDSN(dsn)))
	if err != nil {
		return fmt.Errorf("migrate init: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Setup brings the schema up to date. SQL migrations are used for postgres
// when enabled, AutoMigrate otherwise.
func Setup(gdb *gorm.DB, cfg *config.Config, log zerolog.Logger) error {
	if cfg.App.Migrations && cfg.Database.Driver != "sqlite" {
		log.Info().Msg("Running SQL migrations")
		if err := MigrateSQL(cfg.Database.DSN()); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else if err := Migrate(gdb); err != nil {
		return err
	}
	for _, table := range requiredTables {
		if !gdb.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}
