package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
)

func TestCartGetCreatesEmptyCart(t *testing.T) {
	f := newFixture(t, StrictPolicy())
	user := customer()

	cart, err := f.carts.Get(context.Background(), user.UserID)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, cart.UserID)
	assert.NotNil(t, cart.Items)
	assert.Empty(t, cart.Items)
}

func TestCartAddAccumulates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, StrictPolicy())
	user := customer()
	p := f.product(t, "Lamp", 40, 10)

	_, err := f.carts.Add(ctx, user.UserID, p.ID.Hex(), intPtr(2))
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, user.UserID, p.ID.Hex(), nil)
	require.NoError(t, err)
	cart, err := f.carts.Add(ctx, user.UserID, p.ID.Hex(), intPtr(3))
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 6, cart.Items[0].Quantity)
	require.NotNil(t, cart.Items[0].Product)
	assert.Equal(t, "Lamp", cart.Items[0].Product.Name)
}

func TestCartAddErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, StrictPolicy())
	user := customer()
	p := f.product(t, "Lamp", 40, 10)

	_, err := f.carts.Add(ctx, user.UserID, primitive.NewObjectID().Hex(), nil)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.carts.Add(ctx, user.UserID, "nope", nil)
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.carts.Add(ctx, user.UserID, p.ID.Hex(), intPtr(0))
	require.ErrorIs(t, err, ErrValidation)
}

func TestCartUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, StrictPolicy())
	user := customer()
	a := f.product(t, "A", 10, 10)
	b := f.product(t, "B", 20, 10)

	_, err := f.carts.Update(ctx, user.UserID, a.ID.Hex(), 1)
	require.ErrorIs(t, err, ErrNotFound, "no cart yet")

	_, err = f.carts.Add(ctx, user.UserID, a.ID.Hex(), intPtr(2))
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, user.UserID, b.ID.Hex(), nil)
	require.NoError(t, err)

	_, err = f.carts.Update(ctx, user.UserID, primitive.NewObjectID().Hex(), 1)
	require.ErrorIs(t, err, ErrNotFound, "item not in cart")

	cart, err := f.carts.Update(ctx, user.UserID, a.ID.Hex(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)

	cart, err = f.carts.Update(ctx, user.UserID, a.ID.Hex(), 0)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, b.ID, cart.Items[0].ProductID)
}

func TestCartRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, StrictPolicy())
	user := customer()
	a := f.product(t, "A", 10, 10)
	b := f.product(t, "B", 20, 10)

	_, err := f.carts.Remove(ctx, user.UserID, "")
	require.ErrorIs(t, err, ErrNotFound)

	for _, p := range []models.Product{a, b} {
		_, err = f.carts.Add(ctx, user.UserID, p.ID.Hex(), nil)
		require.NoError(t, err)
	}

	cart, err := f.carts.Remove(ctx, user.UserID, a.ID.Hex())
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	cart, err = f.carts.Remove(ctx, user.UserID, a.ID.Hex())
	require.NoError(t, err, "removing an absent product is a no-op")
	require.Len(t, cart.Items, 1)

	cart, err = f.carts.Remove(ctx, user.UserID, "")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartShowsDeletedProductAsNil(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, StrictPolicy())
	user := customer()
	p := f.product(t, "A", 10, 10)
	_, err := f.carts.Add(ctx, user.UserID, p.ID.Hex(), nil)
	require.NoError(t, err)

	require.NoError(t, NewCatalogService(f.store).Delete(ctx, p.ID.Hex()))

	cart, err := f.carts.Get(ctx, user.UserID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, p.ID, cart.Items[0].ProductID)
	assert.Nil(t, cart.Items[0].Product)
}
