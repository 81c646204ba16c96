package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-quotes/internal/pricing"
)

func TestRateTableDefaultsAndOverrides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	table, err := env.rates.Table(ctx, env.user.ID)
	require.NoError(t, err)
	assertDecimal(t, "4500", table[pricing.USD])
	assertDecimal(t, "620", table[pricing.CNY])

	table, err = env.rates.Update(ctx, env.user.ID, pricing.RateTable{pricing.USD: dec("4650.5")})
	require.NoError(t, err)
	assertDecimal(t, "4650.5", table[pricing.USD])
	assertDecimal(t, "4900", table[pricing.EUR], "untouched currencies keep defaults")

	table, err = env.rates.Update(ctx, env.user.ID, pricing.RateTable{pricing.USD: dec("4700")})
	require.NoError(t, err)
	assertDecimal(t, "4700", table[pricing.USD], "upsert replaces")

	other := createUser(t, env.db, "other@example.com")
	otherTable, err := env.rates.Table(ctx, other.ID)
	require.NoError(t, err)
	assertDecimal(t, "4500", otherTable[pricing.USD], "overrides are per user")

	require.NoError(t, env.rates.Reset(ctx, env.user.ID))
	table, err = env.rates.Table(ctx, env.user.ID)
	require.NoError(t, err)
	assertDecimal(t, "4500", table[pricing.USD])
}

func TestRateUpdateValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.rates.Update(context.Background(), env.user.ID, pricing.RateTable{
		pricing.MGA: dec("1"),
		"GBP":       dec("5000"),
		pricing.EUR: dec("0"),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "accounting_currency", verr.Violations["rates.MGA"])
	assert.Equal(t, "unknown_currency", verr.Violations["rates.GBP"])
	assert.Equal(t, "must_be_positive", verr.Violations["rates.EUR"])
}

func TestRateConvert(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.rates.Convert(ctx, env.user.ID, dec("100"), pricing.EUR)
	require.NoError(t, err)
	assertDecimal(t, "4900", c.Rate)
	assertDecimal(t, "490000", c.Converted)

	c, err = env.rates.Convert(ctx, env.user.ID, dec("100"), pricing.MGA)
	require.NoError(t, err)
	assertDecimal(t, "1", c.Rate)
	assertDecimal(t, "100", c.Converted)
}

func TestRateServiceDefaultsAreCopies(t *testing.T) {
	s := NewRateService(nil, nil)
	d := s.Defaults()
	d[pricing.USD] = dec("1")
	assertDecimal(t, "4500", s.Defaults()[pricing.USD])
}
