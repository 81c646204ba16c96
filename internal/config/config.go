// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"

	"github.com/diewo77/go-quotes/internal/pricing"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Auth     AuthConfig
	Pricing  PricingConfig
	Backup   BackupConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds connection settings. Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver     string
	RawDSN     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool
	Migrations bool
	Seed       bool
	LogLevel   string
	LogPretty  bool
}

// AuthConfig holds session and token settings.
type AuthConfig struct {
	SessionSecret string
	TokenTTL      int // minutes
}

// PricingConfig overrides the built-in exchange rates and origin policy.
type PricingConfig struct {
	PrimaryOrigin string
	Rates         pricing.RateTable
	// Location is the calendar analytics periods follow.
	Location *time.Location
}

// Policy returns the cost resolution policy for this deployment.
func (p PricingConfig) Policy() pricing.Policy {
	return pricing.Policy{PrimaryOrigin: p.PrimaryOrigin, Location: p.Location}
}

// BackupConfig holds backup storage and scheduling settings.
type BackupConfig struct {
	Dir      string
	Keep     int
	Format   string
	Schedule string
	S3Bucket string
	S3Prefix string
	Region   string
	// S3-compatible endpoint (MinIO, R2). Empty uses AWS.
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// UseS3 reports whether snapshots go to a bucket instead of Dir.
func (b BackupConfig) UseS3() bool {
	return b.S3Bucket != ""
}

// CORSConfig lists allowed browser origins for the JSON API.
type CORSConfig struct {
	Origins []string
}

// DSN returns the connection string for the configured driver.
// For postgres an explicit DATABASE_DSN wins over the DB_* parts.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	if d.RawDSN != "" {
		return d.RawDSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			RawDSN:     os.Getenv("DATABASE_DSN"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "quotes"),
			Password:   getEnv("DB_PASSWORD", "quotes123"),
			DBName:     getEnv("DB_NAME", "quotes"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "quotes.db"),
		},
		App: AppConfig{
			Dev:        getEnvBool("DEV", true),
			Migrations: getEnvBool("MIGRATIONS", false),
			Seed:       getEnvBool("DB_SEED", false),
			LogLevel:   getEnv("LOG_LEVEL", "info"),
			LogPretty:  getEnvBool("LOG_PRETTY", false),
		},
		Auth: AuthConfig{
			SessionSecret: getEnv("SESSION_SECRET", "devsessionsecret"),
			TokenTTL:      getEnvInt("JWT_TTL_MINUTES", 24*60),
		},
		Pricing: PricingConfig{
			PrimaryOrigin: getEnv("PRIMARY_ORIGIN", pricing.DefaultPrimaryOrigin),
			Rates: pricing.DefaultRates().Merge(rateOverrides(map[pricing.Currency]string{
				pricing.USD: "RATE_USD",
				pricing.EUR: "RATE_EUR",
				pricing.CNY: "RATE_CNY",
			})),
			Location: getEnvLocation("BUSINESS_TIMEZONE", "Indian/Antananarivo"),
		},
		Backup: BackupConfig{
			Dir:      getEnv("BACKUP_DIR", "backups"),
			Keep:     getEnvInt("BACKUP_KEEP", 10),
			Format:   strings.ToLower(getEnv("BACKUP_FORMAT", "json")),
			Schedule: os.Getenv("BACKUP_SCHEDULE"),
			S3Bucket: os.Getenv("BACKUP_S3_BUCKET"),
			S3Prefix: getEnv("BACKUP_S3_PREFIX", "go-quotes/"),
			Region:   getEnv("AWS_REGION", "eu-west-3"),

			S3Endpoint:  os.Getenv("BACKUP_S3_ENDPOINT"),
			S3AccessKey: os.Getenv("BACKUP_S3_ACCESS_KEY"),
			S3SecretKey: os.Getenv("BACKUP_S3_SECRET_KEY"),
		},
		CORS: CORSConfig{
			Origins: getEnvList("CORS_ORIGINS"),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvDecimal returns the decimal value of key, zero when unset or invalid.
func getEnvDecimal(key string) decimal.Decimal {
	v, err := decimal.NewFromString(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return decimal.Zero
	}
	return v
}

// rateOverrides reads one env var per currency, keeping positive values only.
func rateOverrides(keys map[pricing.Currency]string) pricing.RateTable {
	out := pricing.RateTable{}
	for c, key := range keys {
		if r := getEnvDecimal(key); r.IsPositive() {
			out[c] = r
		}
	}
	return out
}

// getEnvLocation loads the named time zone, UTC when it cannot be found.
func getEnvLocation(key, defaultValue string) *time.Location {
	loc, err := time.LoadLocation(getEnv(key, defaultValue))
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
