package http

import (
	"context"
	"encoding/json"

	"github.com/kahvecikaan/probagno/internal/domain"
	"github.com/kahvecikaan/probagno/internal/store"
)

// Catalog is the catalog service used by the handlers
type Catalog interface {
	ListProducts(ctx context.Context) (domain.Products, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	Seed(ctx context.Context) error
}

// CatalogView serves state derived from the local catalog snapshot
type CatalogView interface {
	Categories() []*domain.Category
	Featured() domain.Products
	BestSellers() domain.Products
	Related(product *domain.Product, limit int) domain.Products
	Dashboard() store.Dashboard
}

// Settings reads and writes settings documents by key
type Settings interface {
	Get(ctx context.Context, key string) (any, error)
	Put(ctx context.Context, key string, raw json.RawMessage) (any, error)
	Shipping(ctx context.Context) domain.ShippingSettings
}

// CartRegistry hands out the cart for a cart id. Get registers unknown ids,
// Lookup does not.
type CartRegistry interface {
	Get(id string) *store.Cart
	Lookup(id string) (*store.Cart, bool)
}

// nonNil keeps empty lists encoded as [] rather than null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
