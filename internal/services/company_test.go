package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyGetPlaceholder(t *testing.T) {
	env := newTestEnv(t)
	cs, err := env.company.Get(context.Background(), env.user.ID)
	require.NoError(t, err)
	assert.Zero(t, cs.ID)
	assert.Equal(t, 30, cs.QuoteValidityDays)
}

func TestCompanySave(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cs, err := env.company.Save(ctx, env.user.ID, CompanyInput{
		Name:                 "Import SARL",
		Email:                "contact@import.mg",
		NIF:                  "4001234567",
		STAT:                 "46101 11 2020 0 01234",
		DefaultMarginPercent: dec("25"),
	})
	require.NoError(t, err)
	require.NotZero(t, cs.ID)
	assert.Equal(t, 30, cs.QuoteValidityDays, "zero validity falls back to 30 days")

	again, err := env.company.Save(ctx, env.user.ID, CompanyInput{Name: "Import SARL", QuoteValidityDays: 45})
	require.NoError(t, err)
	assert.Equal(t, cs.ID, again.ID, "one settings row per user")
	assert.Equal(t, 45, again.QuoteValidityDays)

	_, err = env.company.Save(ctx, env.user.ID, CompanyInput{Email: "bad"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "required", verr.Violations["name"])
	assert.Equal(t, "invalid_email", verr.Violations["email"])
}
