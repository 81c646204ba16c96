// Package db opens the database, applies the schema and seeds demo data.
package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/go-quotes/internal/config"
)

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// Open connects to the configured database. Postgres connections are
// retried to give the server time to start.
func Open(cfg config.DatabaseConfig, debug bool, log zerolog.Logger) (*gorm.DB, error) {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	switch cfg.Driver {
	case "sqlite":
		log.Info().Str("driver", "sqlite").Str("path", cfg.SQLitePath).Msg("Opening database")
		gdb, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return gdb, nil
	case "postgres", "":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	dsn := NormalizeDSN(cfg.DSN())
	log.Info().Str("driver", "postgres").Str("dsn", MaskDSN(dsn)).Msg("Opening database")

	var (
		gdb *gorm.DB
		err error
	)
	for i := 1; i <= connectAttempts; i++ {
		gdb, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i).Msg("Database not ready, retrying")
		time.Sleep(connectBackoff)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after %d attempts: %w", connectAttempts, err)
	}
	if err := gdb.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	return gdb, nil
}

// Close releases the underlying connection pool.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
