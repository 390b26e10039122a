// Package aggregation computes the catalog rollups used by the stats,
// dashboard and recommendation views. Every function is pure: the input
// slice is never reordered or modified, and all orderings are stable so
// ties keep their original collection order.
package aggregation

import (
	"sort"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

// Stats is the summary served by the stats endpoint.
type Stats struct {
	TotalProducts      int     `json:"totalProducts"`
	LowStockProducts   int     `json:"lowStockProducts"`
	OutOfStockProducts int     `json:"outOfStockProducts"`
	TotalInventory     int     `json:"totalInventory"`
	AveragePrice       float64 `json:"averagePrice"`
}

// Summarize computes Stats over products.
func Summarize(products []models.Product) Stats {
	return Stats{
		TotalProducts:      CountTotal(products),
		LowStockProducts:   CountLowStock(products),
		OutOfStockProducts: CountOutOfStock(products),
		TotalInventory:     SumInventory(products),
		AveragePrice:       AveragePrice(products),
	}
}

// CountTotal counts all products.
func CountTotal(products []models.Product) int {
	return len(products)
}

// CountLowStock counts products with 0 < inventory < 10.
func CountLowStock(products []models.Product) int {
	n := 0
	for _, p := range products {
		if isLowStock(p) {
			n++
		}
	}
	return n
}

// CountOutOfStock counts products with no inventory.
func CountOutOfStock(products []models.Product) int {
	return len(OutOfStock(products))
}

// OutOfStock returns the products with no inventory, in collection order.
func OutOfStock(products []models.Product) []models.Product {
	out := []models.Product{}
	for _, p := range products {
		if p.Inventory == 0 {
			out = append(out, p)
		}
	}
	return out
}

// OutOfStockPercentage is the share of out-of-stock products in percent, 0 when empty.
func OutOfStockPercentage(products []models.Product) float64 {
	if len(products) == 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(CountOutOfStock(products))).
		Div(decimal.NewFromInt(int64(len(products)))).
		Mul(decimal.NewFromInt(100))
	return pct.InexactFloat64()
}

// SumInventory adds up the inventory of all products.
func SumInventory(products []models.Product) int {
	total := 0
	for _, p := range products {
		total += p.Inventory
	}
	return total
}

// AveragePrice is the arithmetic mean of price, 0 for an empty collection.
func AveragePrice(products []models.Product) float64 {
	if len(products) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, p := range products {
		sum = sum.Add(decimal.NewFromFloat(p.Price))
	}
	return sum.Div(decimal.NewFromInt(int64(len(products)))).InexactFloat64()
}

// LineValue is price * inventory for a single product.
func LineValue(p models.Product) float64 {
	return lineValue(p).InexactFloat64()
}

// TotalInventoryValue sums price * inventory over products.
func TotalInventoryValue(products []models.Product) float64 {
	sum := decimal.Zero
	for _, p := range products {
		sum = sum.Add(lineValue(p))
	}
	return sum.InexactFloat64()
}

// TopByInventory returns the n products with the most inventory.
func TopByInventory(products []models.Product, n int) []models.Product {
	return topN(products, n, func(a, b models.Product) bool {
		return a.Inventory > b.Inventory
	})
}

// CriticalStock returns up to n products with 0 < inventory < 5, lowest first.
func CriticalStock(products []models.Product, n int) []models.Product {
	critical := filter(products, func(p models.Product) bool {
		return p.Inventory > 0 && p.Inventory < models.CriticalStockThreshold
	})
	return topN(critical, n, func(a, b models.Product) bool {
		return a.Inventory < b.Inventory
	})
}

// TopRated returns the n highest rated products.
func TopRated(products []models.Product, n int) []models.Product {
	return topN(products, n, byRatingDesc)
}

// BestSellers returns the n products with the most reviews.
func BestSellers(products []models.Product, n int) []models.Product {
	return topN(products, n, func(a, b models.Product) bool {
		return a.Reviews > b.Reviews
	})
}

// ByCategoryTopRated returns the n highest rated products of one category.
func ByCategoryTopRated(products []models.Product, category models.Category, n int) []models.Product {
	inCategory := filter(products, func(p models.Product) bool {
		return p.Category == category
	})
	return topN(inCategory, n, byRatingDesc)
}

// Related returns up to n products sharing p's category, excluding p itself,
// in collection order.
func Related(products []models.Product, p models.Product, n int) []models.Product {
	related := filter(products, func(other models.Product) bool {
		return other.Category == p.Category && other.Slug != p.Slug
	})
	return head(related, n)
}

func isLowStock(p models.Product) bool {
	return p.Inventory > 0 && p.Inventory < models.LowStockThreshold
}

func lineValue(p models.Product) decimal.Decimal {
	return decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(p.Inventory)))
}

func byRatingDesc(a, b models.Product) bool {
	return a.Rating > b.Rating
}

func filter(products []models.Product, keep func(models.Product) bool) []models.Product {
	out := []models.Product{}
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// topN stable-sorts a copy of products with less and keeps the first n.
func topN(products []models.Product, n int, less func(a, b models.Product) bool) []models.Product {
	sorted := make([]models.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	return head(sorted, n)
}

func head(products []models.Product, n int) []models.Product {
	if n <= 0 {
		return []models.Product{}
	}
	if n > len(products) {
		n = len(products)
	}
	return products[:n]
}
