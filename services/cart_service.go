package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/database"
	"storefront/models"
)

type CartService struct {
	carts    database.CartRepository
	products database.ProductRepository
}

func NewCartService(store *database.Store) *CartService {
	return &CartService{carts: store.Carts, products: store.Products}
}

// Get returns the user's cart, creating an empty one on first access.
func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) (*models.CartView, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// Add puts quantity units of the product in the cart; a nil quantity means 1.
func (s *CartService) Add(ctx context.Context, userID primitive.ObjectID, productID string, quantity *int) (*models.CartView, error) {
	pid, err := parseRef(productID, "productId")
	if err != nil {
		return nil, err
	}
	qty := 1
	if quantity != nil {
		qty = *quantity
	}
	if qty <= 0 {
		return nil, invalid("quantity must be positive")
	}

	if _, err := s.products.FindByID(ctx, pid); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, missing("product")
		}
		return nil, err
	}
	if err := s.carts.AddItem(ctx, userID, pid, qty); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Update sets the quantity of an existing line. Zero or less removes it.
func (s *CartService) Update(ctx context.Context, userID primitive.ObjectID, productID string, quantity int) (*models.CartView, error) {
	pid, err := parseRef(productID, "productId")
	if err != nil {
		return nil, err
	}
	cart, err := s.findCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, ok := cart.Item(pid); !ok {
		return nil, missing("item in cart")
	}

	if quantity <= 0 {
		err = s.carts.RemoveItem(ctx, userID, pid)
	} else {
		err = s.carts.SetItemQuantity(ctx, userID, pid, quantity)
	}
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Remove drops one product from the cart, or every line when productID is "".
// Removing a product that isn't in the cart is not an error.
func (s *CartService) Remove(ctx context.Context, userID primitive.ObjectID, productID string) (*models.CartView, error) {
	if _, err := s.findCart(ctx, userID); err != nil {
		return nil, err
	}

	if productID == "" {
		if err := s.carts.Clear(ctx, userID); err != nil {
			return nil, err
		}
		return s.Get(ctx, userID)
	}

	pid, err := parseRef(productID, "productId")
	if err != nil {
		return nil, err
	}
	if err := s.carts.RemoveItem(ctx, userID, pid); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *CartService) findCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, missing("cart")
	}
	return cart, err
}

func (s *CartService) view(ctx context.Context, cart *models.Cart) (*models.CartView, error) {
	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	view := &models.CartView{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Items:     make([]models.CartLine, 0, len(cart.Items)),
		UpdatedAt: cart.UpdatedAt,
	}
	for _, it := range cart.Items {
		line := models.CartLine{ProductID: it.ProductID, Quantity: it.Quantity}
		if p, ok := products[it.ProductID]; ok {
			line.Product = &p
		}
		view.Items = append(view.Items, line)
	}
	return view, nil
}
