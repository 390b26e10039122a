package services

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"storefront/internal/apperrors"
	"storefront/internal/cache"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"
)

// DefaultListLimit caps listings that do not ask for a limit.
const DefaultListLimit = 100

// EventPublisher receives product change events. Publishing is best effort.
type EventPublisher interface {
	PublishProductEvent(event rabbitmq.ProductEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	pages    cache.PageCache
	events   EventPublisher
	validate *validator.Validate
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(repo repositories.ProductRepository, pages cache.PageCache, events EventPublisher) *ProductService {
	return &ProductService{
		repo:     repo,
		pages:    pages,
		events:   events,
		validate: newValidator(),
	}
}

// ListProducts returns products matching query in storage order.
func (s *ProductService) ListProducts(ctx context.Context, query models.ProductQuery) ([]models.Product, error) {
	if query.Category != "" && !query.Category.Valid() {
		return nil, apperrors.NewValidationError(msgInvalidFields, map[string]string{
			"category": "category must be one of: Electronics, Fashion, Home, Sports, Books",
		})
	}
	if query.Limit <= 0 {
		query.Limit = DefaultListLimit
	}
	return s.repo.List(ctx, query)
}

// GetProduct resolves identifier as a slug first and then as an id.
func (s *ProductService) GetProduct(ctx context.Context, identifier string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(ctx, models.NormalizeSlug(identifier))
	if err == nil || !errors.Is(err, apperrors.ErrNotFound) {
		return product, err
	}
	return s.repo.GetByID(ctx, identifier)
}

// CreateProduct validates input and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	input.Normalize()
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}

	product := input.Product()
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	log.Info().Str("id", product.ID).Str("slug", product.Slug).Msg("product created")
	s.afterChange(ctx, rabbitmq.ProductCreated, product, cache.ProductPath(product.Slug))
	return product, nil
}

// UpdateProduct applies the set fields of patch to the product found by identifier.
func (s *ProductService) UpdateProduct(ctx context.Context, identifier string, patch models.ProductPatch) (*models.Product, error) {
	patch.Normalize()
	if err := validateStruct(s.validate, patch); err != nil {
		return nil, err
	}

	existing, err := s.GetProduct(ctx, identifier)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, existing.ID, patch)
	if err != nil {
		return nil, err
	}

	log.Info().Str("id", updated.ID).Str("slug", updated.Slug).Msg("product updated")
	paths := []string{cache.ProductPath(existing.Slug)}
	if updated.Slug != existing.Slug {
		paths = append(paths, cache.ProductPath(updated.Slug))
	}
	s.afterChange(ctx, rabbitmq.ProductUpdated, updated, paths...)
	return updated, nil
}

// DeleteProduct removes the product found by identifier.
func (s *ProductService) DeleteProduct(ctx context.Context, identifier string) error {
	existing, err := s.GetProduct(ctx, identifier)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		return err
	}

	log.Info().Str("id", existing.ID).Str("slug", existing.Slug).Msg("product deleted")
	s.afterChange(ctx, rabbitmq.ProductDeleted, existing, cache.ProductPath(existing.Slug))
	return nil
}

// Revalidate drops the cached detail page of slug and the home page. It does
// not require the product to exist.
func (s *ProductService) Revalidate(ctx context.Context, slug string) error {
	slug = models.NormalizeSlug(slug)
	if slug == "" {
		return apperrors.NewValidationError(msgMissingFields, map[string]string{"slug": "slug is required"})
	}
	if err := s.pages.Invalidate(ctx, cache.ProductPath(slug), cache.PathHome); err != nil {
		return err
	}
	log.Info().Str("slug", slug).Msg("pages revalidated")
	s.publish(rabbitmq.ProductEvent{Type: rabbitmq.ProductRevalidated, Slug: slug})
	return nil
}

// afterChange drops the pages a committed change affects and announces it.
// Failures are logged; the change itself has already been stored.
func (s *ProductService) afterChange(ctx context.Context, kind rabbitmq.EventType, product *models.Product, productPaths ...string) {
	paths := append([]string{cache.PathHome, cache.PathRecommendations}, productPaths...)
	if err := s.pages.Invalidate(ctx, paths...); err != nil {
		log.Warn().Err(err).Strs("paths", paths).Msg("failed to invalidate cached pages")
	}
	s.publish(rabbitmq.ProductEvent{Type: kind, ID: product.ID, Slug: product.Slug})
}

func (s *ProductService) publish(event rabbitmq.ProductEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishProductEvent(event); err != nil {
		log.Warn().Err(err).Str("type", string(event.Type)).Msg("failed to publish product event")
	}
}
