package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/apperrors"
	"storefront/internal/models"
)

// DBProvider hands out the current database handle, connecting or
// reconnecting as needed. *database.Connector implements it.
type DBProvider interface {
	DB(ctx context.Context) (*gorm.DB, error)
}

// GORMProductRepository is a GORM implementation of ProductRepository.
// The handle is fetched per operation so a reconnect is picked up.
type GORMProductRepository struct {
	store DBProvider
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(store DBProvider) *GORMProductRepository {
	return &GORMProductRepository{
		store: store,
	}
}

func (r *GORMProductRepository) session(ctx context.Context) (*gorm.DB, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	return db.WithContext(ctx), nil
}

// List retrieves products in creation order, optionally filtered by category
// and a case-insensitive search over name and description. Products created
// in the same instant are ordered by id.
func (r *GORMProductRepository) List(ctx context.Context, query models.ProductQuery) ([]models.Product, error) {
	db, err := r.session(ctx)
	if err != nil {
		return nil, err
	}
	tx := db.Model(&models.Product{})
	if query.Category != "" {
		tx = tx.Where("category = ?", query.Category)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		tx = tx.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}

	products := []models.Product{}
	if err := tx.Order("created_at ASC").Order("id ASC").Find(&products).Error; err != nil {
		return nil, apperrors.Unavailable("failed to list products", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return r.first(ctx, "id = ?", id)
}

// GetBySlug retrieves a single product by its exact (normalized) slug.
func (r *GORMProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.first(ctx, "slug = ?", models.NormalizeSlug(slug))
}

func (r *GORMProductRepository) first(ctx context.Context, cond string, arg string) (*models.Product, error) {
	db, err := r.session(ctx)
	if err != nil {
		return nil, err
	}
	var product models.Product
	if err := db.First(&product, cond, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", arg, apperrors.ErrNotFound)
		}
		return nil, apperrors.Unavailable(fmt.Sprintf("failed to get product %s", arg), err)
	}
	return &product, nil
}

// Create inserts a new product. The slug is checked first so the common
// duplicate case gets a clean error; the unique index on slug rejects the
// rare concurrent insert that slips past the check.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	product.Slug = models.NormalizeSlug(product.Slug)

	db, err := r.session(ctx)
	if err != nil {
		return err
	}
	var existing int64
	if err := db.Model(&models.Product{}).
		Where("slug = ?", product.Slug).Count(&existing).Error; err != nil {
		return apperrors.Unavailable("failed to check slug", err)
	}
	if existing > 0 {
		return fmt.Errorf("slug %s: %w", product.Slug, apperrors.ErrDuplicateSlug)
	}

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.Touch()

	if err := db.Create(product).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("slug %s: %w", product.Slug, apperrors.ErrDuplicateSlug)
		}
		return apperrors.Unavailable("failed to create product", err)
	}
	return nil
}

// Update merges patch into the stored product and refreshes LastUpdated.
// The slug is not re-checked here; a collision is still rejected by the
// unique index.
func (r *GORMProductRepository) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	db, err := r.session(ctx)
	if err != nil {
		return nil, err
	}
	var updated *models.Product
	err = db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("product %s: %w", id, apperrors.ErrNotFound)
			}
			return apperrors.Unavailable(fmt.Sprintf("failed to load product %s", id), err)
		}

		patch.Apply(&product)
		product.Touch()

		// Save writes every column, including zero values such as inventory 0.
		if err := tx.Save(&product).Error; err != nil {
			if isDuplicateKey(err) {
				return fmt.Errorf("slug %s: %w", product.Slug, apperrors.ErrDuplicateSlug)
			}
			return apperrors.Unavailable(fmt.Sprintf("failed to update product %s", id), err)
		}
		updated = &product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete permanently removes a product by its ID.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	db, err := r.session(ctx)
	if err != nil {
		return err
	}
	res := db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.Unavailable("failed to delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// Count returns the number of stored products.
func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	db, err := r.session(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, apperrors.Unavailable("failed to count products", err)
	}
	return n, nil
}

// DeleteAll removes every product.
func (r *GORMProductRepository) DeleteAll(ctx context.Context) error {
	db, err := r.session(ctx)
	if err != nil {
		return err
	}
	err = db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Product{}).Error
	if err != nil {
		return apperrors.Unavailable("failed to delete products", err)
	}
	return nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
