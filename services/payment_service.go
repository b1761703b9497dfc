package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"storefront/payment"
)

const defaultCurrency = "INR"

type Gateway interface {
	CreateOrder(ctx context.Context, req payment.OrderRequest) (*payment.Order, error)
}

type PaymentService struct {
	gateway Gateway
	secret  string
	now     func() time.Time
}

func NewPaymentService(gateway Gateway, keySecret string) *PaymentService {
	return &PaymentService{gateway: gateway, secret: keySecret, now: time.Now}
}

// CreateIntent opens a gateway order for amount, given in major currency
// units. The gateway is sent the amount in minor units.
func (s *PaymentService) CreateIntent(ctx context.Context, amount float64, currency string) (*payment.Order, error) {
	if amount <= 0 {
		return nil, invalid("amount must be positive")
	}
	if currency == "" {
		currency = defaultCurrency
	}

	minor := decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	order, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		Amount:   minor,
		Currency: currency,
		Receipt:  fmt.Sprintf("order_%d", s.now().UnixMilli()),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return order, nil
}

// Verify checks the signature the gateway returned for a completed payment.
// It never touches orders.
func (s *PaymentService) Verify(orderID, paymentID, signature string) bool {
	return payment.VerifySignature(s.secret, orderID, paymentID, signature)
}
