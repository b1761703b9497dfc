package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/database"
	"storefront/models"
)

type WishlistService struct {
	wishlists database.WishlistRepository
	products  database.ProductRepository
}

func NewWishlistService(store *database.Store) *WishlistService {
	return &WishlistService{wishlists: store.Wishlists, products: store.Products}
}

func (s *WishlistService) Get(ctx context.Context, userID primitive.ObjectID) (*models.WishlistView, error) {
	w, err := s.wishlists.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, w)
}

// Add saves the product; saving it twice keeps a single entry.
func (s *WishlistService) Add(ctx context.Context, userID primitive.ObjectID, productID string) (*models.WishlistView, error) {
	pid, err := parseRef(productID, "productId")
	if err != nil {
		return nil, err
	}
	if _, err := s.products.FindByID(ctx, pid); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, missing("product")
		}
		return nil, err
	}
	if err := s.wishlists.Add(ctx, userID, pid); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *WishlistService) Remove(ctx context.Context, userID primitive.ObjectID, productID string) (*models.WishlistView, error) {
	pid, err := parseRef(productID, "productId")
	if err != nil {
		return nil, err
	}
	if _, err := s.wishlists.FindByUser(ctx, userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, missing("wishlist")
		}
		return nil, err
	}
	if err := s.wishlists.Remove(ctx, userID, pid); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *WishlistService) view(ctx context.Context, w *models.Wishlist) (*models.WishlistView, error) {
	products, err := s.products.FindByIDs(ctx, w.Products)
	if err != nil {
		return nil, err
	}

	view := &models.WishlistView{
		ID:        w.ID,
		UserID:    w.UserID,
		Products:  make([]models.WishlistEntry, 0, len(w.Products)),
		UpdatedAt: w.UpdatedAt,
	}
	for _, id := range w.Products {
		entry := models.WishlistEntry{ProductID: id}
		if p, ok := products[id]; ok {
			entry.Product = &p
		}
		view.Products = append(view.Products, entry)
	}
	return view, nil
}
