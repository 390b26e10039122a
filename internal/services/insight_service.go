package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"storefront/internal/aggregation"
	"storefront/internal/cache"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// Page lifetimes in the view cache.
const (
	HomeTTL            = 60 * time.Second
	ProductPageTTL     = 60 * time.Second
	RecommendationsTTL = time.Hour
)

// View sizes.
const (
	dashboardTopN       = 5
	recommendationTopN  = 6
	perCategoryTopN     = 3
	relatedProductsTopN = 4
)

// Dashboard is the admin overview of the whole catalog.
type Dashboard struct {
	Stats                aggregation.Stats `json:"stats"`
	TotalValue           float64           `json:"totalValue"`
	TopProducts          []models.Product  `json:"topProducts"`
	CriticalProducts     []models.Product  `json:"criticalProducts"`
	OutOfStock           []models.Product  `json:"outOfStock"`
	OutOfStockPercentage float64           `json:"outOfStockPercentage"`
	Rows                 []DashboardRow    `json:"products"`
}

// DashboardRow is one line of the inventory table.
type DashboardRow struct {
	Product models.Product     `json:"product"`
	Value   float64            `json:"value"`
	Status  models.StockStatus `json:"status"`
}

// Recommendations groups the best products several ways.
type Recommendations struct {
	TopRated    []models.Product                     `json:"topRated"`
	BestSellers []models.Product                     `json:"bestSellers"`
	ByCategory  map[models.Category][]models.Product `json:"byCategory"`
}

// ProductPage is the detail view of one product.
type ProductPage struct {
	Product models.Product     `json:"product"`
	Status  models.StockStatus `json:"status"`
	Related []models.Product   `json:"related"`
}

// HomePage is the default storefront listing.
type HomePage struct {
	Products   []models.Product  `json:"products"`
	Count      int               `json:"count"`
	Categories []models.Category `json:"categories"`
}

// InsightService builds the read-only catalog views. Cacheable views are
// served cache-aside from the page cache.
type InsightService struct {
	repo  repositories.ProductRepository
	pages cache.PageCache
	group singleflight.Group
}

// NewInsightService creates a new InsightService.
func NewInsightService(repo repositories.ProductRepository, pages cache.PageCache) *InsightService {
	return &InsightService{repo: repo, pages: pages}
}

func (s *InsightService) all(ctx context.Context) ([]models.Product, error) {
	return s.repo.List(ctx, models.ProductQuery{})
}

// Stats summarizes the catalog. It is never cached.
func (s *InsightService) Stats(ctx context.Context) (aggregation.Stats, error) {
	products, err := s.all(ctx)
	if err != nil {
		return aggregation.Stats{}, err
	}
	return aggregation.Summarize(products), nil
}

// Dashboard builds the admin overview. It is never cached.
func (s *InsightService) Dashboard(ctx context.Context) (*Dashboard, error) {
	products, err := s.all(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]DashboardRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, DashboardRow{
			Product: p,
			Value:   aggregation.LineValue(p),
			Status:  p.StockStatus(),
		})
	}

	return &Dashboard{
		Stats:                aggregation.Summarize(products),
		TotalValue:           aggregation.TotalInventoryValue(products),
		TopProducts:          aggregation.TopByInventory(products, dashboardTopN),
		CriticalProducts:     aggregation.CriticalStock(products, dashboardTopN),
		OutOfStock:           aggregation.OutOfStock(products),
		OutOfStockPercentage: aggregation.OutOfStockPercentage(products),
		Rows:                 rows,
	}, nil
}

// Recommendations returns the recommendation groups, with every category present.
func (s *InsightService) Recommendations(ctx context.Context) (*Recommendations, error) {
	return cached(ctx, s, cache.PathRecommendations, RecommendationsTTL, func(ctx context.Context) (*Recommendations, error) {
		products, err := s.all(ctx)
		if err != nil {
			return nil, err
		}
		byCategory := make(map[models.Category][]models.Product, len(models.Categories))
		for _, category := range models.Categories {
			byCategory[category] = aggregation.ByCategoryTopRated(products, category, perCategoryTopN)
		}
		return &Recommendations{
			TopRated:    aggregation.TopRated(products, recommendationTopN),
			BestSellers: aggregation.BestSellers(products, recommendationTopN),
			ByCategory:  byCategory,
		}, nil
	})
}

// ProductPage returns the detail view of the product with slug.
func (s *InsightService) ProductPage(ctx context.Context, slug string) (*ProductPage, error) {
	slug = models.NormalizeSlug(slug)
	return cached(ctx, s, cache.ProductPath(slug), ProductPageTTL, func(ctx context.Context) (*ProductPage, error) {
		product, err := s.repo.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		sameCategory, err := s.repo.List(ctx, models.ProductQuery{Category: product.Category})
		if err != nil {
			return nil, err
		}
		return &ProductPage{
			Product: *product,
			Status:  product.StockStatus(),
			Related: aggregation.Related(sameCategory, *product, relatedProductsTopN),
		}, nil
	})
}

// HomePage returns the default listing.
func (s *InsightService) HomePage(ctx context.Context) (*HomePage, error) {
	return cached(ctx, s, cache.PathHome, HomeTTL, func(ctx context.Context) (*HomePage, error) {
		products, err := s.repo.List(ctx, models.ProductQuery{Limit: DefaultListLimit})
		if err != nil {
			return nil, err
		}
		return &HomePage{
			Products:   products,
			Count:      len(products),
			Categories: models.Categories,
		}, nil
	})
}

// cached serves the view at path from the page cache, loading and storing it
// on a miss. Concurrent misses for the same path share one load, which runs
// detached from any single caller's cancellation. A load that overlapped an
// invalidation of path is returned but not cached. Cache failures are logged
// and fall through to the store.
func cached[T any](ctx context.Context, s *InsightService, path string, ttl time.Duration, load func(ctx context.Context) (*T, error)) (*T, error) {
	var view T
	found, err := s.pages.Get(ctx, path, &view)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("page cache read failed")
	}
	if found {
		log.Debug().Str("path", path).Msg("page cache hit")
		return &view, nil
	}

	log.Debug().Str("path", path).Msg("page cache miss")
	results := s.group.DoChan(path, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		gen := s.pages.Generation(path)
		fresh, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		stored, err := s.pages.SetIfCurrent(loadCtx, path, fresh, ttl, gen)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("path", path).Msg("page cache write failed")
		case !stored:
			log.Debug().Str("path", path).Msg("page invalidated during load, not cached")
		}
		return fresh, nil
	})

	var res singleflight.Result
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	fresh, ok := res.Val.(*T)
	if !ok {
		return nil, fmt.Errorf("unexpected view type %T for %s", res.Val, path)
	}
	return fresh, nil
}
