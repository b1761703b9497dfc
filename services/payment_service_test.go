package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/payment"
)

type fakeGateway struct {
	got payment.OrderRequest
	err error
}

func (g *fakeGateway) CreateOrder(_ context.Context, req payment.OrderRequest) (*payment.Order, error) {
	g.got = req
	if g.err != nil {
		return nil, g.err
	}
	return &payment.Order{ID: "order_X", Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"}, nil
}

func TestCreateIntent(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewPaymentService(gw, "s")
	svc.now = func() time.Time { return time.UnixMilli(1700000000123) }

	order, err := svc.CreateIntent(context.Background(), 499.99, "")
	require.NoError(t, err)
	assert.Equal(t, "order_X", order.ID)
	assert.Equal(t, int64(49999), gw.got.Amount)
	assert.Equal(t, "INR", gw.got.Currency)
	assert.Equal(t, "order_1700000000123", gw.got.Receipt)
}

func TestCreateIntentErrors(t *testing.T) {
	gw := &fakeGateway{err: errors.New("boom")}
	svc := NewPaymentService(gw, "s")

	_, err := svc.CreateIntent(context.Background(), 0, "INR")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateIntent(context.Background(), 10, "USD")
	require.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, "USD", gw.got.Currency)
}

func TestVerify(t *testing.T) {
	svc := NewPaymentService(&fakeGateway{}, "s")
	sig := "a23a35a9cc17304682813499f610ed21e20e5e98e04bc2fbe9a198a68b058546"

	assert.True(t, svc.Verify("o1", "p1", sig))
	assert.False(t, svc.Verify("o1", "p2", sig))
	assert.False(t, svc.Verify("o1", "p1", "deadbeef"))
}
