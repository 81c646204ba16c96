package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/pricing"
)

func TestAnalyticsReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	june := createQuote(t, env, panelItem())
	setCreatedAt(t, env.db, june.ID, time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC))
	may := createQuote(t, env, localItem())
	setCreatedAt(t, env.db, may.ID, time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC))
	old := createQuote(t, env, localItem())
	setCreatedAt(t, env.db, old.ID, time.Date(2023, 6, 3, 10, 0, 0, 0, time.UTC))

	period, err := pricing.NewPeriod(pricing.ByMonth, 2024, time.June)
	require.NoError(t, err)
	r, err := env.analytics.Report(ctx, env.user.ID, period)
	require.NoError(t, err)

	assert.Equal(t, 1, r.Analysis.QuotesAnalyzed)
	assertDecimal(t, "54000000", r.Analysis.TotalRevenue)
	assertDecimal(t, "45000000", r.Analysis.TotalCost)
	assertDecimal(t, "9000000", r.Analysis.NetProfit)
	require.Len(t, r.Quotes, 1)
	assert.Equal(t, june.Number, r.Quotes[0].Number)

	assert.Equal(t, time.May, r.PreviousPeriod.Month)
	assert.Equal(t, 1, r.Previous.QuotesAnalyzed)
	assertDecimal(t, "100000", r.Previous.TotalRevenue)
	assert.True(t, r.Trend.QuotesTrend.IsZero())
	assertDecimal(t, "53900", r.Trend.RevenueTrend)

	yearly, err := env.analytics.Report(ctx, env.user.ID, pricing.Period{Granularity: pricing.ByYear, Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, 2, yearly.Analysis.QuotesAnalyzed)
	assert.Equal(t, 1, yearly.Previous.QuotesAnalyzed)
}

func TestAnalyticsCostFollowsCurrentRates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	q := createQuote(t, env, panelItem())

	_, err := env.rates.Update(ctx, env.user.ID, pricing.RateTable{pricing.USD: dec("5000")})
	require.NoError(t, err)

	r, err := env.analytics.Report(ctx, env.user.ID, pricing.PeriodOf(pricing.ByYear, q.CreatedAt))
	require.NoError(t, err)
	assertDecimal(t, "54000000", r.Analysis.TotalRevenue, "revenue is the stored total")
	assertDecimal(t, "50000000", r.Analysis.TotalCost, "cost is recomputed")
}

func TestAnalyticsOverview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		createQuote(t, env, localItem())
	}
	accepted := createQuote(t, env, panelItem())
	status := models.QuoteStatusAccepted
	down := dec("4000000")
	_, err := env.quotes.Update(ctx, env.user.ID, accepted.ID, QuoteUpdate{Status: &status, DownPayment: &down})
	require.NoError(t, err)
	_, err = env.calculations.Save(ctx, env.user.ID, CalculationInput{Name: "c", Items: []pricing.LineItem{localItem()}})
	require.NoError(t, err)

	o, err := env.analytics.Overview(ctx, env.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, o.Analysis.QuotesAnalyzed)
	assert.Equal(t, 6, o.ByStatus[models.QuoteStatusDraft])
	assert.Equal(t, 1, o.ByStatus[models.QuoteStatusAccepted])
	assertDecimal(t, "50000000", o.Outstanding)
	assert.EqualValues(t, 1, o.Clients)
	assert.EqualValues(t, 1, o.Calculations)
	require.Len(t, o.Recent, 5)
	assert.Equal(t, accepted.Number, o.Recent[4].Number)
}

func TestAnalyticsEmpty(t *testing.T) {
	env := newTestEnv(t)
	o, err := env.analytics.Overview(context.Background(), env.user.ID)
	require.NoError(t, err)
	assert.Zero(t, o.Analysis.QuotesAnalyzed)
	assert.True(t, o.Analysis.ProfitMargin.IsZero())
	assert.Empty(t, o.Recent)
}
