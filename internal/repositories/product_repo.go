package repositories

import (
	"context"

	"storefront/internal/models"
)

// ProductRepository defines the interface for product data access.
//
// Lookups that find nothing return an error wrapping apperrors.ErrNotFound;
// slug collisions wrap apperrors.ErrDuplicateSlug and store failures wrap
// apperrors.ErrStoreUnavailable.
type ProductRepository interface {
	List(ctx context.Context, query models.ProductQuery) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) error
}
