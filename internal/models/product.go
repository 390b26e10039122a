package models

import (
	"strings"
	"time"
)

// Category is one of the fixed catalog categories.
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryFashion     Category = "Fashion"
	CategoryHome        Category = "Home"
	CategorySports      Category = "Sports"
	CategoryBooks       Category = "Books"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryFashion,
	CategoryHome,
	CategorySports,
	CategoryBooks,
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

const (
	// DefaultRating is assigned to new products that do not carry a rating.
	DefaultRating = 4.5
	// LowStockThreshold is the exclusive upper bound of "low stock".
	LowStockThreshold = 10
	// CriticalStockThreshold is the exclusive upper bound of "critical stock".
	CriticalStockThreshold = 5
)

// Product represents a product in the catalog.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Slug        string    `json:"slug" gorm:"type:varchar(255);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Price       float64   `json:"price" gorm:"not null"`
	Category    Category  `json:"category" gorm:"type:varchar(32);index;not null"`
	Inventory   int       `json:"inventory" gorm:"not null"`
	Image       string    `json:"image" gorm:"type:varchar(1024);not null"`
	Rating      float64   `json:"rating"`
	Reviews     int       `json:"reviews"`
	LastUpdated time.Time `json:"lastUpdated"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName pins the table name regardless of gorm naming strategy.
func (Product) TableName() string {
	return "products"
}

// Touch stamps LastUpdated with the current time rounded up to the next
// microsecond, keeping it strictly later than the previous stamp.
func (p *Product) Touch() {
	now := time.Now().UTC()
	if t := now.Truncate(time.Microsecond); t.Before(now) {
		now = t.Add(time.Microsecond)
	}
	if !now.After(p.LastUpdated) {
		now = p.LastUpdated.Add(time.Microsecond)
	}
	p.LastUpdated = now
}

// StockStatus classifies a product by its inventory level.
type StockStatus string

const (
	StockIn  StockStatus = "in_stock"
	StockLow StockStatus = "low_stock"
	StockOut StockStatus = "out_of_stock"
)

// StockStatus returns the stock classification of p.
func (p Product) StockStatus() StockStatus {
	switch {
	case p.Inventory == 0:
		return StockOut
	case p.Inventory < LowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}

// NormalizeSlug applies the slug storage form: trimmed and lowercased.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// ProductQuery selects products for listing. A zero Limit means no limit.
type ProductQuery struct {
	Category Category
	Search   string
	Limit    int
}

// ProductInput is the payload for creating a product.
type ProductInput struct {
	Name        string   `json:"name" validate:"required"`
	Slug        string   `json:"slug" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Category    Category `json:"category" validate:"required,oneof=Electronics Fashion Home Sports Books"`
	Inventory   *int     `json:"inventory" validate:"omitempty,gte=0"`
	Image       string   `json:"image" validate:"required"`
	Rating      *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Reviews     *int     `json:"reviews" validate:"omitempty,gte=0"`
}

// Normalize trims the name and applies the slug storage form.
func (in *ProductInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = NormalizeSlug(in.Slug)
}

// Product builds a new Product from the input, applying defaults.
func (in ProductInput) Product() *Product {
	p := &Product{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Category:    in.Category,
		Image:       in.Image,
		Rating:      DefaultRating,
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Inventory != nil {
		p.Inventory = *in.Inventory
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.Reviews != nil {
		p.Reviews = *in.Reviews
	}
	return p
}

// ProductPatch carries the fields of a partial update. Nil fields are left unchanged.
type ProductPatch struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,min=1"`
	Slug        *string   `json:"slug,omitempty" validate:"omitempty,min=1"`
	Description *string   `json:"description,omitempty" validate:"omitempty,min=1"`
	Price       *float64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	Category    *Category `json:"category,omitempty" validate:"omitempty,oneof=Electronics Fashion Home Sports Books"`
	Inventory   *int      `json:"inventory,omitempty" validate:"omitempty,gte=0"`
	Image       *string   `json:"image,omitempty" validate:"omitempty,min=1"`
	Rating      *float64  `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Reviews     *int      `json:"reviews,omitempty" validate:"omitempty,gte=0"`
}

// Normalize trims the name and applies the slug storage form.
func (pt *ProductPatch) Normalize() {
	if pt.Name != nil {
		name := strings.TrimSpace(*pt.Name)
		pt.Name = &name
	}
	if pt.Slug != nil {
		slug := NormalizeSlug(*pt.Slug)
		pt.Slug = &slug
	}
}

// Apply merges the set fields of the patch into p. It does not touch LastUpdated.
func (pt ProductPatch) Apply(p *Product) {
	if pt.Name != nil {
		p.Name = *pt.Name
	}
	if pt.Slug != nil {
		p.Slug = *pt.Slug
	}
	if pt.Description != nil {
		p.Description = *pt.Description
	}
	if pt.Price != nil {
		p.Price = *pt.Price
	}
	if pt.Category != nil {
		p.Category = *pt.Category
	}
	if pt.Inventory != nil {
		p.Inventory = *pt.Inventory
	}
	if pt.Image != nil {
		p.Image = *pt.Image
	}
	if pt.Rating != nil {
		p.Rating = *pt.Rating
	}
	if pt.Reviews != nil {
		p.Reviews = *pt.Reviews
	}
}
