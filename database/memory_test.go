package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewMemoryStore().Store()
}

func seedProduct(t *testing.T, s *Store, name string, price float64, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: price, Stock: stock, CreatedAt: time.Now()}
	require.NoError(t, s.Products.Create(context.Background(), &p))
	return p
}

func TestCartAddIncrementsExistingLine(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	user, product := primitive.NewObjectID(), primitive.NewObjectID()

	require.NoError(t, s.Carts.AddItem(ctx, user, product, 1))
	require.NoError(t, s.Carts.AddItem(ctx, user, product, 1))

	cart, err := s.Carts.FindByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestCartSetQuantityAndRemove(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	user, a, b := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	assert.ErrorIs(t, s.Carts.SetItemQuantity(ctx, user, a, 3), ErrNotFound)

	require.NoError(t, s.Carts.AddItem(ctx, user, a, 1))
	require.NoError(t, s.Carts.AddItem(ctx, user, b, 1))
	require.NoError(t, s.Carts.SetItemQuantity(ctx, user, a, 5))
	assert.ErrorIs(t, s.Carts.SetItemQuantity(ctx, user, primitive.NewObjectID(), 1), ErrNotFound)

	require.NoError(t, s.Carts.RemoveItem(ctx, user, b))
	require.NoError(t, s.Carts.RemoveItem(ctx, user, b))

	cart, err := s.Carts.FindByUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []models.CartItem{{ProductID: a, Quantity: 5}}, cart.Items)

	require.NoError(t, s.Carts.Clear(ctx, user))
	cart, err = s.Carts.FindByUser(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartGetOrCreateIsLazy(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	user := primitive.NewObjectID()

	_, err := s.Carts.FindByUser(ctx, user)
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := s.Carts.GetOrCreate(ctx, user)
	require.NoError(t, err)
	second, err := s.Carts.GetOrCreate(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.NotNil(t, first.Items)
}

func TestWishlistAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	user, product := primitive.NewObjectID(), primitive.NewObjectID()

	require.NoError(t, s.Wishlists.Add(ctx, user, product))
	require.NoError(t, s.Wishlists.Add(ctx, user, product))

	w, err := s.Wishlists.FindByUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{product}, w.Products)

	require.NoError(t, s.Wishlists.Remove(ctx, user, primitive.NewObjectID()))
	require.NoError(t, s.Wishlists.Remove(ctx, user, product))
	w, err = s.Wishlists.FindByUser(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, w.Products)
}

func TestAdjustStockFloor(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	p := seedProduct(t, s, "vase", 100, 2)

	assert.ErrorIs(t, s.Products.AdjustStock(ctx, p.ID, -3, true), ErrInsufficientStock)
	require.NoError(t, s.Products.AdjustStock(ctx, p.ID, -3, false))

	got, err := s.Products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, got.Stock)

	assert.ErrorIs(t, s.Products.AdjustStock(ctx, primitive.NewObjectID(), -1, true), ErrNotFound)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	p := seedProduct(t, s, "rug", 50, 5)
	user := primitive.NewObjectID()
	require.NoError(t, s.Carts.AddItem(ctx, user, p.ID, 2))

	boom := errors.New("boom")
	err := s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Products.AdjustStock(ctx, p.ID, -2, true))
		require.NoError(t, s.Carts.Clear(ctx, user))
		require.NoError(t, s.Orders.Create(ctx, &models.Order{UserID: user, Status: models.StatusPending}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)

	cart, err := s.Carts.FindByUser(ctx, user)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	n, err := s.Orders.Count(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConcurrentFlooredDecrementsNeverOversell(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	p := seedProduct(t, s, "diya", 10, 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Products.AdjustStock(ctx, p.ID, -1, true); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, err := s.Products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, succeeded)
	assert.Zero(t, got.Stock)
}

func TestOrdersListNewestFirstWithFilters(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, o := range []models.Order{
		{UserID: alice, Status: models.StatusPending, OrderDate: base, TotalAmount: 10},
		{UserID: bob, Status: models.StatusShipped, OrderDate: base.Add(time.Hour), TotalAmount: 20},
		{UserID: alice, Status: models.StatusCancelled, OrderDate: base.Add(2 * time.Hour), TotalAmount: 40},
	} {
		o := o
		require.NoError(t, s.Orders.Create(ctx, &o), i)
	}

	mine, err := s.Orders.List(ctx, OrderFilter{UserID: &alice})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, models.StatusCancelled, mine[0].Status)

	shipped, err := s.Orders.List(ctx, OrderFilter{Status: models.StatusShipped})
	require.NoError(t, err)
	require.Len(t, shipped, 1)
	assert.Equal(t, bob, shipped[0].UserID)

	latest, err := s.Orders.List(ctx, OrderFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, latest, 1)

	revenue, err := s.Orders.Revenue(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 30, revenue, 0.001)
}

func TestUpdateStatusKeepsDeliveryDateUnlessSupplied(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	o := models.Order{UserID: primitive.NewObjectID(), Status: models.StatusPending}
	require.NoError(t, s.Orders.Create(ctx, &o))

	when := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	updated, err := s.Orders.UpdateStatus(ctx, o.ID, "", models.StatusDelivered, &when)
	require.NoError(t, err)
	require.NotNil(t, updated.DeliveryDate)

	updated, err = s.Orders.UpdateStatus(ctx, o.ID, models.StatusDelivered, models.StatusShipped, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.DeliveryDate)
	assert.True(t, when.Equal(*updated.DeliveryDate))

	_, err = s.Orders.UpdateStatus(ctx, o.ID, models.StatusPending, models.StatusCancelled, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Orders.UpdateStatus(ctx, primitive.NewObjectID(), "", models.StatusShipped, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsersAndBlacklist(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u := models.User{Name: "A", Email: "A@Example.com", Password: "hash", Role: models.RoleUser}
	require.NoError(t, s.Users.Create(ctx, &u))
	dup := models.User{Email: "a@example.com"}
	assert.ErrorIs(t, s.Users.Create(ctx, &dup), ErrDuplicate)

	found, err := s.Users.FindByEmail(ctx, "a@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	list, err := s.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Password)

	blocked, err := s.Users.SetBlocked(ctx, u.ID, true)
	require.NoError(t, err)
	assert.True(t, blocked.IsBlocked)

	revoked, err := s.Tokens.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)
	require.NoError(t, s.Tokens.Revoke(ctx, "tok", time.Now().Add(time.Hour)))
	revoked, err = s.Tokens.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)
}
