package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/pricing"
)

type testEnv struct {
	db           *gorm.DB
	rates        *RateService
	quotes       *QuoteService
	clients      *ClientService
	company      *CompanyService
	calculations *CalculationService
	analytics    *AnalyticsService
	exports      *ExportService
	user         models.User
	client       models.Client
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	policy := pricing.DefaultPolicy
	env := &testEnv{db: db}
	env.rates = NewRateService(db, pricing.DefaultRates())
	env.quotes = NewQuoteService(db, env.rates, policy, zerolog.Nop())
	env.clients = NewClientService(db)
	env.company = NewCompanyService(db)
	env.calculations = NewCalculationService(db, env.rates, env.quotes, policy)
	env.analytics = NewAnalyticsService(db, env.quotes, env.rates, policy)
	env.exports = NewExportService(env.quotes, env.company, env.rates, policy)

	env.user = createUser(t, db, "owner@example.com")
	env.client = createClient(t, db, env.user.ID, "Rakoto SARL")
	return env
}

func createUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Email: email, Password: "x"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createClient(t *testing.T, db *gorm.DB, userID uint, name string) models.Client {
	t.Helper()
	c := models.Client{UserID: userID, Name: name, City: "Antananarivo"}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// panelItem is 10 units at 1000 USD from China with a 20% margin.
// At 4500 MGA/USD: cost 45,000,000, margin 9,000,000, total 54,000,000.
func panelItem() pricing.LineItem {
	return pricing.LineItem{
		Description:    "Solar panel",
		Origin:         "China",
		Quantity:       10,
		PurchasePrice:  dec("1000"),
		SourceCurrency: pricing.USD,
		MarginPercent:  dec("20"),
	}
}

// localItem costs 100,000 MGA with no margin.
func localItem() pricing.LineItem {
	return pricing.LineItem{
		Description:   "Installation",
		Origin:        "Madagascar",
		Quantity:      1,
		PurchasePrice: dec("100000"),
	}
}

func createQuote(t *testing.T, env *testEnv, items ...pricing.LineItem) *models.Quote {
	t.Helper()
	q, err := env.quotes.Create(context.Background(), env.user.ID, QuoteInput{
		ClientID: env.client.ID,
		Title:    "Test quote",
		Items:    items,
	})
	require.NoError(t, err)
	return q
}

func setCreatedAt(t *testing.T, db *gorm.DB, quoteID uint, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(&models.Quote{}).Where("id = ?", quoteID).UpdateColumn("created_at", at).Error)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, got.Equal(dec(want)), "want %s, got %s %v", want, got, msgAndArgs)
}
