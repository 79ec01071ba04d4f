package repository

import (
	"context"
	"encoding/json"

	"github.com/kahvecikaan/probagno/internal/domain"
)

// ProductRepository is the persistence boundary for products.
// Implementations publish a change signal after every successful mutation.
type ProductRepository interface {
	// ListProducts returns all products, newest first
	ListProducts(ctx context.Context) (domain.Products, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	// UpsertProductBySlug inserts the product or overwrites the row holding its slug
	UpsertProductBySlug(ctx context.Context, product *domain.Product) (*domain.Product, error)
}

// CategoryRepository is the persistence boundary for categories
type CategoryRepository interface {
	// ListCategories returns all categories ordered by name
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	UpsertCategoryBySlug(ctx context.Context, category *domain.Category) (*domain.Category, error)
}

// SettingsRepository stores opaque JSON documents by key
type SettingsRepository interface {
	// GetSetting returns the stored document, or false when none exists
	GetSetting(ctx context.Context, key string) (json.RawMessage, bool, error)
	UpsertSetting(ctx context.Context, key string, value json.RawMessage) error
}

// Repository bundles every table of the catalog backend
type Repository interface {
	ProductRepository
	CategoryRepository
	SettingsRepository
}
