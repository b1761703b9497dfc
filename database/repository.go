package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type ProductFilter struct {
	Category string
	Search   string
	Featured *bool
}

type OrderFilter struct {
	UserID *primitive.ObjectID
	Status models.OrderStatus
	Limit  int64
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
	List(ctx context.Context, f ProductFilter) ([]models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, u models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// AdjustStock adds delta to the product's stock. With floor set the update
	// only applies when the resulting stock stays non-negative, otherwise
	// ErrInsufficientStock is returned.
	AdjustStock(ctx context.Context, id primitive.ObjectID, delta int, floor bool) error
	Count(ctx context.Context) (int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	// List returns orders newest first.
	List(ctx context.Context, f OrderFilter) ([]models.Order, error)
	// UpdateStatus sets status (and deliveryDate when non-nil). A non-empty
	// from makes the update conditional on the current status; a miss is
	// reported as ErrNotFound.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus, deliveryDate *time.Time) (*models.Order, error)
	// Count counts orders with the given status, or all orders for "".
	Count(ctx context.Context, status models.OrderStatus) (int64, error)
	// Revenue sums totalAmount over orders that are not cancelled.
	Revenue(ctx context.Context) (float64, error)
}

type CartRepository interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	// AddItem increments the line for productID, creating the cart and the
	// line as needed.
	AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error
	// SetItemQuantity overwrites an existing line; ErrNotFound if the line is absent.
	SetItemQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

type WishlistRepository interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error)
	GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error)
	Add(ctx context.Context, userID, productID primitive.ObjectID) error
	Remove(ctx context.Context, userID, productID primitive.ObjectID) error
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) (*models.User, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

// TokenBlacklist stores revoked bearer tokens until they expire.
type TokenBlacklist interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// TxManager runs fn atomically. Repositories must be called with the ctx
// passed to fn for their work to join the transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles every repository a running service needs.
type Store struct {
	Products  ProductRepository
	Orders    OrderRepository
	Carts     CartRepository
	Wishlists WishlistRepository
	Users     UserRepository
	Tokens    TokenBlacklist
	Tx        TxManager
}
