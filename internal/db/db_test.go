package db

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/diewo77/go-quotes/internal/config"
	"github.com/diewo77/go-quotes/internal/models"
)

var nop = zerolog.Nop()

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := config.DatabaseConfig{Driver: "sqlite", SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())}
	gdb, err := Open(cfg, false, nop)
	require.NoError(t, err)
	return gdb
}

func TestNormalizeDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "  ", ""},
		{"url untouched", "postgres://u:p@h:5432/db?sslmode=require", "postgres://u:p@h:5432/db?sslmode=require"},
		{"quoted kv gets sslmode", `"host=db  user=u dbname=q"`, "host=db user=u dbname=q sslmode=disable"},
		{"kv keeps sslmode", "host=db user=u dbname=q sslmode=require", "host=db user=u dbname=q sslmode=require"},
		{"garbage untouched", "not-a-dsn", "not-a-dsn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDSN(tt.in))
		})
	}
}

func TestToURLDSN(t *testing.T) {
	got := ToURLDSN("host=db port=5432 user=quotes password=secret dbname=quotes sslmode=disable")
	assert.Equal(t, "postgres://quotes:secret@db:5432/quotes?sslmode=disable", got)
	assert.Equal(t, "host=db dbname=x", ToURLDSN("host=db dbname=x"), "missing user is left alone")
	assert.Equal(t, "postgresql://a@b/c", ToURLDSN("postgresql://a@b/c"))
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "host=db password=*** dbname=q", MaskDSN("host=db password=hunter2 dbname=q"))
	masked := MaskDSN("postgres://u:hunter2@h/db")
	assert.NotContains(t, masked, "hunter2")
	assert.Equal(t, "postgres://u:***@h/db", masked)
	assert.Equal(t, "postgres://u@h/db?sslmode=disable", MaskDSN("postgres://u@h/db?sslmode=disable"))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql"}, false, nop)
	assert.Error(t, err)
}

func TestSetupAutoMigrate(t *testing.T) {
	gdb := openTestDB(t)
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "sqlite"}, App: config.AppConfig{Migrations: true}}
	require.NoError(t, Setup(gdb, cfg, nop))
	for _, table := range []string{"users", "quotes", "quote_items", "calculations", "exchange_rates", "backups"} {
		assert.True(t, gdb.Migrator().HasTable(table), table)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSeedIdempotent(t *testing.T) {
	gdb := openTestDB(t)
	require.NoError(t, Migrate(gdb))
	require.NoError(t, Seed(gdb, nop))
	require.NoError(t, Seed(gdb, nop))

	var users, clients, settings int64
	gdb.Model(&models.User{}).Where("email = ?", DemoEmail).Count(&users)
	gdb.Model(&models.Client{}).Count(&clients)
	gdb.Model(&models.CompanySettings{}).Count(&settings)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(2), clients)
	assert.Equal(t, int64(1), settings)
}
