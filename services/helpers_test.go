package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/auth"
	"storefront/database"
	"storefront/events"
	"storefront/logger"
	"storefront/models"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// failingCarts breaks Clear so checkout fails after the order insert.
type failingCarts struct {
	database.CartRepository
	err error
}

func (c failingCarts) Clear(context.Context, primitive.ObjectID) error { return c.err }

type fixture struct {
	store  *database.Store
	orders *OrderService
	carts  *CartService
	pub    *recordingPublisher
}

func newFixture(t *testing.T, policy OrderPolicy) *fixture {
	t.Helper()
	store := database.NewMemoryStore().Store()
	pub := &recordingPublisher{}
	return &fixture{
		store:  store,
		orders: NewOrderService(store, pub, policy, logger.Discard()),
		carts:  NewCartService(store),
		pub:    pub,
	}
}

func (f *fixture) product(t *testing.T, name string, price float64, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: price, Stock: stock, CreatedAt: time.Now()}
	require.NoError(t, f.store.Products.Create(context.Background(), &p))
	return p
}

func (f *fixture) stock(t *testing.T, id primitive.ObjectID) int {
	t.Helper()
	p, err := f.store.Products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func customer() auth.Identity {
	return auth.Identity{UserID: primitive.NewObjectID(), Role: models.RoleUser}
}

func admin() auth.Identity {
	return auth.Identity{UserID: primitive.NewObjectID(), Role: models.RoleAdmin}
}

func intPtr(v int) *int { return &v }
