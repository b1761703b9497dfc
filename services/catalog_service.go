package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/database"
	"storefront/models"
)

type CatalogService struct {
	products database.ProductRepository
	now      func() time.Time
}

func NewCatalogService(store *database.Store) *CatalogService {
	return &CatalogService{products: store.Products, now: time.Now}
}

func (s *CatalogService) List(ctx context.Context, f database.ProductFilter) ([]models.Product, error) {
	return s.products.List(ctx, f)
}

func (s *CatalogService) Get(ctx context.Context, productID string) (*models.Product, error) {
	id, err := parseID(productID, "product")
	if err != nil {
		return nil, err
	}
	p, err := s.products.FindByID(ctx, id)
	return p, productErr(err)
}

func (s *CatalogService) Create(ctx context.Context, p models.Product) (*models.Product, error) {
	if p.Stock < 0 {
		return nil, invalid("stock must not be negative")
	}
	now := s.now()
	p.ID = primitive.NilObjectID
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Images == nil {
		p.Images = []string{}
	}
	if err := s.products.Create(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *CatalogService) Update(ctx context.Context, productID string, u models.ProductUpdate) (*models.Product, error) {
	id, err := parseID(productID, "product")
	if err != nil {
		return nil, err
	}
	p, err := s.products.Update(ctx, id, u)
	return p, productErr(err)
}

// Delete removes the product. Carts and wishlists keep the dangling reference
// and show it as a null product.
func (s *CatalogService) Delete(ctx context.Context, productID string) error {
	id, err := parseID(productID, "product")
	if err != nil {
		return err
	}
	return productErr(s.products.Delete(ctx, id))
}

func productErr(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return missing("product")
	}
	return err
}
