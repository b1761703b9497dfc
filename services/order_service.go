package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/auth"
	"storefront/database"
	"storefront/events"
	"storefront/models"
)

// OrderPolicy selects how strictly the order workflow guards consistency.
//
// StrictCheckout runs order creation, cart reset and stock reservation in one
// transaction, refuses to oversell and checks the submitted total against the
// line items. Without it checkout is three independent writes.
//
// GuardTransitions enforces the order status lifecycle. Without it an admin
// may assign any status.
type OrderPolicy struct {
	StrictCheckout   bool
	GuardTransitions bool
}

func StrictPolicy() OrderPolicy {
	return OrderPolicy{StrictCheckout: true, GuardTransitions: true}
}

func LegacyPolicy() OrderPolicy {
	return OrderPolicy{}
}

type PlaceOrderInput struct {
	Items           []models.OrderItem     `json:"items"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	PaymentInfo     models.PaymentInfo     `json:"paymentInfo"`
	TotalAmount     float64                `json:"totalAmount"`
}

type UpdateStatusInput struct {
	Status       models.OrderStatus `json:"status"`
	DeliveryDate *time.Time         `json:"deliveryDate"`
}

type OrderService struct {
	orders   database.OrderRepository
	products database.ProductRepository
	carts    database.CartRepository
	tx       database.TxManager
	events   events.Publisher
	policy   OrderPolicy
	log      *slog.Logger
	now      func() time.Time
}

func NewOrderService(store *database.Store, publisher events.Publisher, policy OrderPolicy, log *slog.Logger) *OrderService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &OrderService{
		orders:   store.Orders,
		products: store.Products,
		carts:    store.Carts,
		tx:       store.Tx,
		events:   publisher,
		policy:   policy,
		log:      log,
		now:      time.Now,
	}
}

// PlaceOrder records a pending order from the caller's checkout data, empties
// the caller's cart and takes the ordered quantities out of stock.
func (s *OrderService) PlaceOrder(ctx context.Context, id auth.Identity, in PlaceOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, invalid("no items in order")
	}
	if in.PaymentMethod == "" {
		return nil, invalid("paymentMethod is required")
	}

	order := &models.Order{
		ID:              primitive.NewObjectID(),
		UserID:          id.UserID,
		Items:           append([]models.OrderItem(nil), in.Items...),
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		PaymentInfo:     in.PaymentInfo,
		TotalAmount:     in.TotalAmount,
		Status:          models.StatusPending,
		OrderDate:       s.now().UTC(),
	}

	var err error
	if s.policy.StrictCheckout {
		err = s.placeStrict(ctx, order)
	} else {
		err = s.placeLegacy(ctx, order)
	}
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID.Hex()),
		slog.String("user_id", order.UserID.Hex()),
		slog.Int("items", len(order.Items)),
		slog.Float64("total", order.TotalAmount),
	)
	s.publish(ctx, events.New(events.EventOrderCreated, order.ID.Hex(), map[string]any{
		"userId":      order.UserID.Hex(),
		"totalAmount": order.TotalAmount,
		"items":       len(order.Items),
	}))
	return order, nil
}

func (s *OrderService) placeStrict(ctx context.Context, order *models.Order) error {
	if err := checkItems(order.Items); err != nil {
		return err
	}
	if err := checkTotal(order.Items, order.TotalAmount); err != nil {
		return err
	}

	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, it := range order.Items {
			err := s.products.AdjustStock(ctx, it.ProductID, -it.Quantity, true)
			switch {
			case errors.Is(err, database.ErrNotFound):
				return missing("product " + it.ProductID.Hex())
			case errors.Is(err, database.ErrInsufficientStock):
				return fmt.Errorf("%w for %q", database.ErrInsufficientStock, it.Name)
			case err != nil:
				return fmt.Errorf("reserve stock: %w", err)
			}
		}
		if err := s.orders.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := s.carts.Clear(ctx, order.UserID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
}

// placeLegacy performs the three writes without a transaction. A failure
// after the insert leaves the order in place.
func (s *OrderService) placeLegacy(ctx context.Context, order *models.Order) error {
	if err := s.orders.Create(ctx, order); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	if err := s.carts.Clear(ctx, order.UserID); err != nil {
		return fmt.Errorf("clear cart after order %s: %w", order.ID.Hex(), err)
	}
	for _, it := range order.Items {
		err := s.products.AdjustStock(ctx, it.ProductID, -it.Quantity, false)
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("decrement stock after order %s: %w", order.ID.Hex(), err)
		}
	}
	return nil
}

func checkItems(items []models.OrderItem) error {
	for i, it := range items {
		if it.ProductID.IsZero() {
			return invalid("items[%d].productId is required", i)
		}
		if it.Quantity <= 0 {
			return invalid("items[%d].quantity must be positive", i)
		}
		if it.Price < 0 {
			return invalid("items[%d].price must not be negative", i)
		}
	}
	return nil
}

func checkTotal(items []models.OrderItem, total float64) error {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	if !sum.Round(2).Equal(decimal.NewFromFloat(total).Round(2)) {
		return invalid("totalAmount %s does not match items total %s",
			decimal.NewFromFloat(total).StringFixed(2), sum.StringFixed(2))
	}
	return nil
}

// UpdateStatus sets an order's status, and its delivery date when one is given.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, in UpdateStatusInput) (*models.Order, error) {
	if !in.Status.Valid() {
		return nil, invalid("invalid status %q", in.Status)
	}
	oid, err := parseID(orderID, "order")
	if err != nil {
		return nil, err
	}

	var from models.OrderStatus
	if s.policy.GuardTransitions {
		current, err := s.orders.FindByID(ctx, oid)
		if err != nil {
			return nil, s.orderErr(err)
		}
		// same status with a delivery date only records the date
		sameWithDate := current.Status == in.Status && in.DeliveryDate != nil
		if !sameWithDate && !current.Status.CanTransitionTo(in.Status) {
			return nil, fmt.Errorf("%w: cannot change status from %s to %s", ErrConflict, current.Status, in.Status)
		}
		from = current.Status
	}

	updated, err := s.orders.UpdateStatus(ctx, oid, from, in.Status, in.DeliveryDate)
	if errors.Is(err, database.ErrNotFound) && from != "" {
		// the order moved on between the read and the write
		if _, ferr := s.orders.FindByID(ctx, oid); ferr == nil {
			return nil, fmt.Errorf("%w: order status changed concurrently", ErrConflict)
		}
	}
	if err != nil {
		return nil, s.orderErr(err)
	}

	s.log.InfoContext(ctx, "order status updated",
		slog.String("order_id", updated.ID.Hex()),
		slog.String("status", string(updated.Status)),
	)
	payload := map[string]any{"status": string(updated.Status)}
	if from != "" {
		payload["previous"] = string(from)
	}
	s.publish(ctx, events.New(events.EventOrderStatusChanged, updated.ID.Hex(), payload))
	return updated, nil
}

// Get returns the order if the caller owns it or is an admin.
func (s *OrderService) Get(ctx context.Context, id auth.Identity, orderID string) (*models.Order, error) {
	oid, err := parseID(orderID, "order")
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, oid)
	if err != nil {
		return nil, s.orderErr(err)
	}
	if !id.IsAdmin() && !id.Owns(order.UserID) {
		return nil, fmt.Errorf("%w: not the owner of this order", ErrForbidden)
	}
	return order, nil
}

func (s *OrderService) ListForUser(ctx context.Context, id auth.Identity) ([]models.Order, error) {
	uid := id.UserID
	return s.orders.List(ctx, database.OrderFilter{UserID: &uid})
}

// ListAll returns every order, optionally restricted to one status; "" and
// "all" mean no restriction.
func (s *OrderService) ListAll(ctx context.Context, status string) ([]models.Order, error) {
	f := database.OrderFilter{}
	if status != "" && status != "all" {
		st := models.OrderStatus(status)
		if !st.Valid() {
			return nil, invalid("invalid status %q", status)
		}
		f.Status = st
	}
	return s.orders.List(ctx, f)
}

func (s *OrderService) orderErr(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return missing("order")
	}
	return err
}

func (s *OrderService) publish(ctx context.Context, e events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.WarnContext(ctx, "publish order event",
			slog.String("type", e.Type),
			slog.String("order_id", e.OrderID),
			slog.Any("err", err),
		)
	}
}
