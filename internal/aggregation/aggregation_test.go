package aggregation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/aggregation"
	"storefront/internal/models"
)

func product(slug string, inventory int) models.Product {
	return models.Product{Slug: slug, Inventory: inventory, Category: models.CategoryHome}
}

func slugs(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Slug)
	}
	return out
}

func TestSeedScenario(t *testing.T) {
	products := []models.Product{product("a", 0), product("b", 5), product("c", 50)}

	assert.Equal(t, 3, aggregation.CountTotal(products))
	assert.Equal(t, 1, aggregation.CountOutOfStock(products))
	assert.Equal(t, 1, aggregation.CountLowStock(products))
	assert.Equal(t, 55, aggregation.SumInventory(products))
	assert.Equal(t, []string{"c", "b"}, slugs(aggregation.TopByInventory(products, 2)))
}

func TestLowStockBoundaries(t *testing.T) {
	products := []models.Product{
		product("zero", 0), product("one", 1), product("nine", 9), product("ten", 10),
	}

	assert.Equal(t, 2, aggregation.CountLowStock(products))
	assert.Equal(t, 1, aggregation.CountOutOfStock(products))
	assert.LessOrEqual(t,
		aggregation.CountLowStock(products)+aggregation.CountOutOfStock(products),
		aggregation.CountTotal(products))
}

func TestAveragePrice(t *testing.T) {
	assert.Equal(t, 0.0, aggregation.AveragePrice(nil))
	assert.Equal(t, 0.0, aggregation.AveragePrice([]models.Product{}))

	products := []models.Product{{Price: 10}, {Price: 20}, {Price: 0.3}}
	assert.InDelta(t, 10.1, aggregation.AveragePrice(products), 1e-9)
}

func TestTotalInventoryValue(t *testing.T) {
	products := []models.Product{
		{Price: 0.1, Inventory: 3},
		{Price: 299.99, Inventory: 45},
		{Price: 5, Inventory: 0},
	}
	assert.Equal(t, 13499.85, aggregation.TotalInventoryValue(products))
	assert.Equal(t, 0.0, aggregation.TotalInventoryValue(nil))
	assert.InDelta(t, 13499.55, aggregation.LineValue(products[1]), 1e-9)
}

func TestTopByInventoryIsStableAndBounded(t *testing.T) {
	products := []models.Product{
		product("first", 7), product("big", 20), product("second", 7), product("third", 7),
	}

	top := aggregation.TopByInventory(products, 3)
	assert.Equal(t, []string{"big", "first", "second"}, slugs(top))

	assert.Len(t, aggregation.TopByInventory(products, 10), 4)
	assert.Empty(t, aggregation.TopByInventory(products, 0))
	assert.Empty(t, aggregation.TopByInventory(nil, 3))

	// input order is untouched
	assert.Equal(t, []string{"first", "big", "second", "third"}, slugs(products))
}

func TestCriticalStock(t *testing.T) {
	products := []models.Product{
		product("four", 4), product("zero", 0), product("one", 1),
		product("five", 5), product("other-four", 4), product("two", 2),
	}

	critical := aggregation.CriticalStock(products, 3)
	assert.Equal(t, []string{"one", "two", "four"}, slugs(critical))

	all := aggregation.CriticalStock(products, 10)
	assert.Equal(t, []string{"one", "two", "four", "other-four"}, slugs(all))
}

func TestTopRatedAndBestSellers(t *testing.T) {
	products := []models.Product{
		{Slug: "a", Rating: 4.5, Reviews: 10},
		{Slug: "b", Rating: 4.9, Reviews: 3},
		{Slug: "c", Rating: 4.5, Reviews: 200},
		{Slug: "d", Rating: 3.0, Reviews: 200},
	}

	assert.Equal(t, []string{"b", "a", "c"}, slugs(aggregation.TopRated(products, 3)))
	assert.Equal(t, []string{"c", "d", "a"}, slugs(aggregation.BestSellers(products, 3)))
}

func TestByCategoryTopRated(t *testing.T) {
	products := []models.Product{
		{Slug: "lamp", Category: models.CategoryHome, Rating: 4.5},
		{Slug: "phone", Category: models.CategoryElectronics, Rating: 4.9},
		{Slug: "rug", Category: models.CategoryHome, Rating: 4.8},
		{Slug: "chair", Category: models.CategoryHome, Rating: 4.5},
	}

	home := aggregation.ByCategoryTopRated(products, models.CategoryHome, 2)
	assert.Equal(t, []string{"rug", "lamp"}, slugs(home))
	assert.Empty(t, aggregation.ByCategoryTopRated(products, models.CategoryBooks, 3))
}

func TestRelated(t *testing.T) {
	products := []models.Product{
		{Slug: "lamp", Category: models.CategoryHome},
		{Slug: "phone", Category: models.CategoryElectronics},
		{Slug: "rug", Category: models.CategoryHome},
		{Slug: "chair", Category: models.CategoryHome},
	}

	related := aggregation.Related(products, products[0], 4)
	assert.Equal(t, []string{"rug", "chair"}, slugs(related))
	assert.Len(t, aggregation.Related(products, products[0], 1), 1)
}

func TestSummarizeAndOutOfStockPercentage(t *testing.T) {
	products := []models.Product{
		{Slug: "a", Inventory: 0, Price: 10},
		{Slug: "b", Inventory: 3, Price: 20},
		{Slug: "c", Inventory: 0, Price: 30},
		{Slug: "d", Inventory: 12, Price: 40},
	}

	stats := aggregation.Summarize(products)
	assert.Equal(t, aggregation.Stats{
		TotalProducts:      4,
		LowStockProducts:   1,
		OutOfStockProducts: 2,
		TotalInventory:     15,
		AveragePrice:       25,
	}, stats)

	assert.Equal(t, 50.0, aggregation.OutOfStockPercentage(products))
	assert.Equal(t, 0.0, aggregation.OutOfStockPercentage(nil))
	assert.Equal(t, []string{"a", "c"}, slugs(aggregation.OutOfStock(products)))
}
