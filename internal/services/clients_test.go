package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.clients.Create(ctx, env.user.ID, ClientInput{
		Name:    "  Rasoa ",
		Email:   "rasoa@example.mg",
		Company: "Rasoa Import",
		NIF:     "1234567890",
	})
	require.NoError(t, err)
	assert.Equal(t, "Rasoa", c.Name)
	assert.Equal(t, "Rasoa Import", c.DisplayName())

	c, err = env.clients.Update(ctx, env.user.ID, c.ID, ClientInput{Name: "Rasoa", City: "Toamasina"})
	require.NoError(t, err)
	assert.Equal(t, "Toamasina", c.City)
	assert.Empty(t, c.Company)

	got, err := env.clients.Get(ctx, env.user.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Toamasina", got.City)

	require.NoError(t, env.clients.Delete(ctx, env.user.ID, c.ID))
	_, err = env.clients.Get(ctx, env.user.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.clients.Create(context.Background(), env.user.ID, ClientInput{Email: "not-an-email"})
	require.ErrorIs(t, err, ErrInvalidInput)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "required", verr.Violations["name"])
	assert.Equal(t, "invalid_email", verr.Violations["email"])
}

func TestClientDeleteInUse(t *testing.T) {
	env := newTestEnv(t)
	createQuote(t, env, localItem())

	err := env.clients.Delete(context.Background(), env.user.ID, env.client.ID)
	assert.ErrorIs(t, err, ErrClientInUse)
}

func TestClientScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	other := createUser(t, env.db, "other@example.com")

	_, err := env.clients.Get(ctx, other.ID, env.client.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.clients.Update(ctx, other.ID, env.client.ID, ClientInput{Name: "Hijack"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, env.clients.Delete(ctx, other.ID, env.client.ID), ErrNotFound)
}

func TestClientListSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.clients.Create(ctx, env.user.ID, ClientInput{Name: "Andry", Email: "andry@shop.mg"})
	require.NoError(t, err)
	_, err = env.clients.Create(ctx, env.user.ID, ClientInput{Name: "Bako", Company: "Shop Madagascar"})
	require.NoError(t, err)

	all, total, err := env.clients.List(ctx, env.user.ID, ClientFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, "Andry", all[0].Name, "ordered by name")

	found, total, err := env.clients.List(ctx, env.user.ID, ClientFilter{Search: "shop"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, found, 2)
}
