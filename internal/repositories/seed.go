package repositories

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"storefront/internal/models"
)

// SampleProducts returns the demo catalog used for seeding.
func SampleProducts() []models.Product {
	return []models.Product{
		{
			Name:        "Premium Wireless Headphones",
			Slug:        "premium-wireless-headphones",
			Description: "High-quality wireless headphones with noise cancellation and 30-hour battery life.",
			Price:       299.99,
			Category:    models.CategoryElectronics,
			Inventory:   45,
			Image:       "/wireless-headphones.png",
			Rating:      4.8,
			Reviews:     234,
		},
		{
			Name:        "Organic Cotton T-Shirt",
			Slug:        "organic-cotton-tshirt",
			Description: "Comfortable and sustainable organic cotton t-shirt available in multiple colors.",
			Price:       49.99,
			Category:    models.CategoryFashion,
			Inventory:   120,
			Image:       "/cotton-tshirt.png",
			Rating:      4.6,
			Reviews:     89,
		},
		{
			Name:        "Smart Home Hub",
			Slug:        "smart-home-hub",
			Description: "Control all your smart home devices from one central hub with voice commands.",
			Price:       199.99,
			Category:    models.CategoryElectronics,
			Inventory:   32,
			Image:       "/smart-home-hub.png",
			Rating:      4.7,
			Reviews:     156,
		},
		{
			Name:        "Minimalist Desk Lamp",
			Slug:        "minimalist-desk-lamp",
			Description: "Modern desk lamp with adjustable brightness and USB charging port.",
			Price:       79.99,
			Category:    models.CategoryHome,
			Inventory:   67,
			Image:       "/modern-desk-lamp.png",
			Rating:      4.5,
			Reviews:     112,
		},
		{
			Name:        "Professional Yoga Mat",
			Slug:        "professional-yoga-mat",
			Description: "Non-slip yoga mat made from eco-friendly materials with carrying strap.",
			Price:       59.99,
			Category:    models.CategorySports,
			Inventory:   89,
			Image:       "/rolled-yoga-mat.png",
			Rating:      4.9,
			Reviews:     203,
		},
		{
			Name:        "The Art of Code",
			Slug:        "the-art-of-code",
			Description: "A comprehensive guide to writing clean, maintainable code.",
			Price:       39.99,
			Category:    models.CategoryBooks,
			Inventory:   150,
			Image:       "/programming-book.png",
			Rating:      4.4,
			Reviews:     78,
		},
	}
}

// Seed replaces the stored catalog with products. Products are inserted one
// at a time so creation order matches the slice order.
func Seed(ctx context.Context, repo ProductRepository, products []models.Product) ([]models.Product, error) {
	if err := repo.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear products: %w", err)
	}

	created := make([]models.Product, 0, len(products))
	for i := range products {
		p := products[i]
		if err := repo.Create(ctx, &p); err != nil {
			return created, fmt.Errorf("failed to seed product %s: %w", p.Slug, err)
		}
		created = append(created, p)
	}
	log.Info().Int("count", len(created)).Msg("seeded products")
	return created, nil
}
