package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/apperrors"
	"storefront/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// It keeps insertion order and enforces slug uniqueness under its lock.
type MockProductRepository struct {
	products map[string]models.Product
	order    []string
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// List returns products in insertion order.
func (r *MockProductRepository) List(_ context.Context, query models.ProductQuery) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(query.Search))
	productList := make([]models.Product, 0, len(r.order))
	for _, id := range r.order {
		p := r.products[id]
		if query.Category != "" && p.Category != query.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		productList = append(productList, p)
		if query.Limit > 0 && len(productList) == query.Limit {
			break
		}
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, apperrors.ErrNotFound)
	}
	return &product, nil
}

// GetBySlug returns a product by its slug.
func (r *MockProductRepository) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slug = models.NormalizeSlug(slug)
	if id, ok := r.idBySlug(slug); ok {
		product := r.products[id]
		return &product, nil
	}
	return nil, fmt.Errorf("product %s: %w", slug, apperrors.ErrNotFound)
}

// Create adds a new product.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.Slug = models.NormalizeSlug(product.Slug)
	if _, taken := r.idBySlug(product.Slug); taken {
		return fmt.Errorf("slug %s: %w", product.Slug, apperrors.ErrDuplicateSlug)
	}

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.Touch()

	r.products[product.ID] = *product
	r.order = append(r.order, product.ID)
	return nil
}

// Update merges patch into an existing product.
func (r *MockProductRepository) Update(_ context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, apperrors.ErrNotFound)
	}

	patch.Apply(&product)
	if other, taken := r.idBySlug(product.Slug); taken && other != id {
		return nil, fmt.Errorf("slug %s: %w", product.Slug, apperrors.ErrDuplicateSlug)
	}
	product.Touch()
	product.UpdatedAt = time.Now().UTC()

	r.products[id] = product
	return &product, nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, apperrors.ErrNotFound)
	}
	delete(r.products, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of stored products.
func (r *MockProductRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

// DeleteAll removes every product.
func (r *MockProductRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = make(map[string]models.Product)
	r.order = nil
	return nil
}

// idBySlug must be called with the lock held.
func (r *MockProductRepository) idBySlug(slug string) (string, bool) {
	for id, p := range r.products {
		if p.Slug == slug {
			return id, true
		}
	}
	return "", false
}
