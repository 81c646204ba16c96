package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/go-quotes/internal/pricing"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(All()...))
	return db
}

func TestClient_FullAddress(t *testing.T) {
	tests := []struct {
		name   string
		client Client
		want   string
	}{
		{
			name:   "full address",
			client: Client{Address: "Lot II M 85", PostalCode: "101", City: "Antananarivo", Country: "Madagascar"},
			want:   "Lot II M 85\n101 Antananarivo\nMadagascar",
		},
		{name: "only city", client: Client{City: "Toamasina"}, want: "Toamasina"},
		{name: "address and city", client: Client{Address: "Rue Pasteur", City: "Toamasina"}, want: "Rue Pasteur\nToamasina"},
		{name: "empty", client: Client{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.client.FullAddress())
		})
	}
}

func TestClient_DisplayName(t *testing.T) {
	assert.Equal(t, "Rakoto", (&Client{Name: "Rakoto"}).DisplayName())
	assert.Equal(t, "Import SARL", (&Client{Name: "Rakoto", Company: "Import SARL"}).DisplayName())
}

func TestQuoteStatus(t *testing.T) {
	tests := []struct {
		status  QuoteStatus
		valid   bool
		canEdit bool
	}{
		{QuoteStatusDraft, true, true},
		{QuoteStatusSent, true, false},
		{QuoteStatusAccepted, true, false},
		{QuoteStatusRejected, true, false},
		{"converted", false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			q := &Quote{Status: tt.status}
			assert.Equal(t, tt.valid, tt.status.Valid())
			assert.Equal(t, tt.canEdit, q.CanEdit())
		})
	}
}

func TestQuote_ApplyTotals(t *testing.T) {
	totals := pricing.Totals{
		TotalCost:    decimal.NewFromInt(1000),
		MarginAmount: decimal.NewFromInt(200),
		SellingPrice: decimal.NewFromInt(1200),
	}

	q := &Quote{DownPayment: decimal.NewFromInt(300)}
	q.ApplyTotals(totals)
	assert.True(t, q.TotalAmount.Equal(decimal.NewFromInt(1200)))
	assert.True(t, q.RemainingAmount.Equal(decimal.NewFromInt(900)))

	overridden := &Quote{TotalAmount: decimal.NewFromInt(1500), TotalOverridden: true}
	overridden.ApplyTotals(totals)
	assert.True(t, overridden.TotalAmount.Equal(decimal.NewFromInt(1500)))
	assert.True(t, overridden.TotalCost.Equal(decimal.NewFromInt(1000)))
	assert.True(t, overridden.RemainingAmount.Equal(decimal.NewFromInt(1500)))
}

func TestCostLine_RoundTripAndResolve(t *testing.T) {
	item := pricing.LineItem{
		Description:    "Pompe à eau",
		Origin:         "China",
		Quantity:       50,
		PurchasePrice:  decimal.NewFromInt(200),
		SourceCurrency: pricing.USD,
		TransportFee:   decimal.NewFromInt(125000),
		MiscFee:        decimal.NewFromInt(50000),
		CustomsFee:     decimal.NewFromInt(75000),
		MarginPercent:  decimal.NewFromInt(20),
	}
	line := NewCostLine(item)
	assert.Equal(t, item, line.LineItem())

	line.Resolve(pricing.DefaultPolicy, pricing.RateTable{pricing.USD: decimal.NewFromInt(4500)})
	assert.True(t, line.TotalCost.Equal(decimal.NewFromInt(45250000)))
	assert.True(t, line.LineTotalPrice.Equal(decimal.NewFromInt(54300000)))
	assert.True(t, line.ConvertedTransportFee.Equal(decimal.NewFromInt(125000)))
}

func TestQuote_PricingQuote(t *testing.T) {
	created := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	q := &Quote{
		ID:          4,
		Number:      "DEV-2024-0004",
		CreatedAt:   created,
		TotalAmount: decimal.NewFromInt(99),
		Items: []QuoteItem{
			{CostLine: CostLine{Description: "a", Quantity: 1}},
			{CostLine: CostLine{Description: "b", Quantity: 2}},
		},
	}
	pq := q.PricingQuote()
	assert.Equal(t, uint(4), pq.ID)
	assert.Equal(t, created, pq.CreatedAt)
	assert.True(t, pq.TotalAmount.Equal(decimal.NewFromInt(99)))
	require.Len(t, pq.Items, 2)
	assert.Equal(t, "b", pq.Items[1].Description)
}

func TestGenerateQuoteNumber(t *testing.T) {
	db := setupTestDB(t)
	user := User{Email: "a@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	client := Client{UserID: user.ID, Name: "Rabe"}
	require.NoError(t, db.Create(&client).Error)

	n, err := GenerateQuoteNumber(db, user.ID, 2025)
	require.NoError(t, err)
	assert.Equal(t, "DEV-2025-0001", n)

	for _, num := range []string{"DEV-2025-0001", "DEV-2025-0007", "DEV-2024-0042"} {
		require.NoError(t, db.Create(&Quote{UserID: user.ID, ClientID: client.ID, Number: num, Status: QuoteStatusDraft}).Error)
	}
	n, err = GenerateQuoteNumber(db, user.ID, 2025)
	require.NoError(t, err)
	assert.Equal(t, "DEV-2025-0008", n)

	// the sequence follows the highest stored number
	require.NoError(t, db.Where("number = ?", "DEV-2025-0007").Delete(&Quote{}).Error)
	n, err = GenerateQuoteNumber(db, user.ID, 2025)
	require.NoError(t, err)
	assert.Equal(t, "DEV-2025-0002", n)

	// numbering is per user
	n, err = GenerateQuoteNumber(db, user.ID+1, 2025)
	require.NoError(t, err)
	assert.Equal(t, "DEV-2025-0001", n)
}

func TestQuoteItemsPersistDecimals(t *testing.T) {
	db := setupTestDB(t)
	user := User{Email: "b@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	client := Client{UserID: user.ID, Name: "Rasoa"}
	require.NoError(t, db.Create(&client).Error)

	line := NewCostLine(pricing.LineItem{Description: "Tôle", Quantity: 3, PurchasePrice: decimal.RequireFromString("12.5"), SourceCurrency: pricing.EUR, MarginPercent: decimal.NewFromInt(10)})
	line.Resolve(pricing.DefaultPolicy, pricing.DefaultRates())
	q := Quote{UserID: user.ID, ClientID: client.ID, Number: "DEV-2025-0001", Status: QuoteStatusDraft, Items: []QuoteItem{{CostLine: line}}}
	require.NoError(t, db.Create(&q).Error)

	var got Quote
	require.NoError(t, db.Preload("Items").First(&got, q.ID).Error)
	require.Len(t, got.Items, 1)
	assert.Equal(t, pricing.EUR, got.Items[0].SourceCurrency)
	assert.True(t, got.Items[0].PurchasePrice.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, got.Items[0].TotalCost.Equal(decimal.NewFromInt(183750)))
}

func TestRateTable(t *testing.T) {
	table := RateTable([]ExchangeRate{
		{Currency: pricing.USD, Rate: decimal.NewFromInt(4600)},
		{Currency: pricing.CNY, Rate: decimal.NewFromInt(640)},
	})
	assert.Len(t, table, 2)
	assert.True(t, table[pricing.USD].Equal(decimal.NewFromInt(4600)))
}
