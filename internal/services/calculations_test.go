package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/pricing"
)

// freightItem ships from Europe, so its 40 EUR transport fee is converted.
func freightItem() pricing.LineItem {
	return pricing.LineItem{
		Description:       "Inverter",
		Origin:            "France",
		Quantity:          2,
		PurchasePrice:     dec("500"),
		SourceCurrency:    pricing.EUR,
		TransportFee:      dec("40"),
		TransportCurrency: pricing.EUR,
		CustomsFee:        dec("200000"),
		MarginPercent:     dec("25"),
	}
}

func TestCalculationPreview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.calculations.Preview(ctx, env.user.ID, []pricing.LineItem{freightItem(), localItem()}, nil)
	require.NoError(t, err)
	require.Len(t, p.Lines, 2)

	// 500 EUR * 4900 * 2 = 4,900,000; transport 40 * 4900 = 196,000; customs 200,000.
	inv := p.Lines[0].Resolved
	assertDecimal(t, "2450000", inv.ConvertedPurchasePrice)
	assertDecimal(t, "196000", inv.TransportFee)
	assertDecimal(t, "5296000", inv.TotalCost)
	assertDecimal(t, "1324000", inv.MarginAmount)
	assertDecimal(t, "6620000", inv.LineTotalPrice)
	assertDecimal(t, "3310000", inv.UnitPrice)

	assert.Equal(t, 2, p.Totals.Items)
	assert.Equal(t, 3, p.Totals.Quantity)
	assertDecimal(t, "5396000", p.Totals.TotalCost)
	assertDecimal(t, "6720000", p.Totals.SellingPrice)
	assert.Equal(t, pricing.MGA, p.Lines[1].Input.SourceCurrency)

	var n int64
	require.NoError(t, env.db.Model(&models.Calculation{}).Count(&n).Error)
	assert.Zero(t, n, "preview stores nothing")
}

func TestCalculationPreviewRateOverride(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.calculations.Preview(ctx, env.user.ID, []pricing.LineItem{panelItem()}, pricing.RateTable{pricing.USD: dec("5000")})
	require.NoError(t, err)
	assertDecimal(t, "50000000", p.Totals.TotalCost)
	assertDecimal(t, "5000", p.Rates[pricing.USD])

	stored, err := env.rates.Table(ctx, env.user.ID)
	require.NoError(t, err)
	assertDecimal(t, "4500", stored[pricing.USD], "override is not persisted")

	_, err = env.calculations.Preview(ctx, env.user.ID, nil, pricing.RateTable{"GBP": dec("1"), pricing.EUR: dec("-2"), pricing.MGA: dec("2")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "unknown_currency", verr.Violations["rates.GBP"])
	assert.Equal(t, "must_be_positive", verr.Violations["rates.EUR"])
	assert.Equal(t, "accounting_currency", verr.Violations["rates.MGA"], "same rule as stored rates")
}

func TestCalculationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.calculations.Save(ctx, env.user.ID, CalculationInput{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "required", verr.Violations["name"])
	assert.Equal(t, "required", verr.Violations["items"])

	calc, err := env.calculations.Save(ctx, env.user.ID, CalculationInput{
		Name:  "Panels March",
		Items: []pricing.LineItem{panelItem(), localItem()},
	})
	require.NoError(t, err)
	assertDecimal(t, "45100000", calc.TotalCost)
	assertDecimal(t, "54100000", calc.SellingPrice)

	got, err := env.calculations.Get(ctx, env.user.ID, calc.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Solar panel", got.Items[0].Description)
	assertDecimal(t, "5400000", got.Items[0].UnitPrice)

	list, total, err := env.calculations.List(ctx, env.user.ID, Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)

	q, err := env.calculations.ToQuote(ctx, env.user.ID, calc.ID, env.client.ID)
	require.NoError(t, err)
	assert.Equal(t, "Panels March", q.Title)
	assert.Equal(t, models.QuoteStatusDraft, q.Status)
	require.Len(t, q.Items, 2)
	assertDecimal(t, "54100000", q.TotalAmount)

	_, err = env.calculations.ToQuote(ctx, env.user.ID, calc.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, env.calculations.Delete(ctx, env.user.ID, calc.ID))
	_, err = env.calculations.Get(ctx, env.user.ID, calc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	var items int64
	require.NoError(t, env.db.Model(&models.CalculationItem{}).Count(&items).Error)
	assert.Zero(t, items)

	assert.ErrorIs(t, env.calculations.Delete(ctx, env.user.ID, calc.ID), ErrNotFound)
}
