package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/probagno/internal/cache"
	"github.com/kahvecikaan/probagno/internal/domain"
	"github.com/kahvecikaan/probagno/internal/events"
	"github.com/kahvecikaan/probagno/internal/repository"
)

// CatalogRepository is the part of the backend the catalog service uses
type CatalogRepository interface {
	repository.ProductRepository
	repository.CategoryRepository
}

var (
	productsKey   = cache.Key{Bucket: cache.BucketProducts}
	categoriesKey = cache.Key{Bucket: cache.BucketCategories}
)

func productKey(slug string) cache.Key {
	return cache.Key{Bucket: cache.BucketProduct, ID: slug}
}

// CatalogService reads the catalog through the query cache and writes it
// through the repository
type CatalogService struct {
	repo       CatalogRepository
	cache      *cache.QueryCache
	notifier   events.Notifier
	validation *domain.Validation
	logger     hclog.Logger
	stop       func()
	once       sync.Once
}

// NewCatalogService subscribes to every change signal of notifier and
// invalidates the matching cache entries until Close is called
func NewCatalogService(
	repo CatalogRepository,
	queryCache *cache.QueryCache,
	notifier events.Notifier,
	logger hclog.Logger) *CatalogService {
	s := &CatalogService{
		repo:       repo,
		cache:      queryCache,
		notifier:   notifier,
		validation: domain.NewValidation(),
		logger:     logger,
	}

	s.stop = notifier.OnInvalidate(events.Filter{}, s.invalidate)
	return s
}

// invalidate marks the cache entries a change may have touched. Active
// queries refetch in the background.
func (s *CatalogService) invalidate(change events.Change) {
	s.logger.Debug("Received change", "table", change.Table, "slug", change.Slug, "key", change.Key)

	switch change.Table {
	case domain.KindProducts:
		s.cache.Invalidate(cache.BucketProducts)
		if change.Slug != "" {
			s.cache.InvalidateKey(productKey(change.Slug))
		} else {
			s.cache.Invalidate(cache.BucketProduct)
		}
	case domain.KindCategories:
		s.cache.Invalidate(cache.BucketCategories)
	case domain.KindSettings:
		if change.Key != "" {
			s.cache.InvalidateKey(settingsKey(change.Key))
		} else {
			s.cache.Invalidate(cache.BucketSettings)
		}
	}
}

// Watch calls fn for every change matching filter, after the cache has been
// invalidated for it. The returned func unregisters fn.
func (s *CatalogService) Watch(filter events.Filter, fn func(events.Change)) (cancel func()) {
	return s.notifier.OnInvalidate(filter, func(change events.Change) {
		s.invalidate(change)
		fn(change)
	})
}

// ListProducts returns every product, newest first. A read failure returns an
// empty list along with the error.
func (s *CatalogService) ListProducts(ctx context.Context) (domain.Products, error) {
	s.logger.Debug("Getting all products")

	products, err := cache.Load(ctx, s.cache, productsKey, s.repo.ListProducts)
	if err != nil {
		s.logger.Error("Unable to get products", "error", err)
		return domain.Products{}, err
	}
	return products, nil
}

// ReloadProducts is ListProducts bypassing any cached result
func (s *CatalogService) ReloadProducts(ctx context.Context) (domain.Products, error) {
	products, err := cache.LoadFresh(ctx, s.cache, productsKey, s.repo.ListProducts)
	if err != nil {
		s.logger.Error("Unable to reload products", "error", err)
		return domain.Products{}, err
	}
	return products, nil
}

// ActivateProducts keeps the product list refetching on every invalidation
// until the returned func is called
func (s *CatalogService) ActivateProducts() (release func()) {
	return s.cache.Activate(productsKey, func(ctx context.Context) (any, error) {
		return s.repo.ListProducts(ctx)
	})
}

// GetProductBySlug always reads the repository so the latest edit is seen
func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	s.logger.Debug("Getting product by slug", "slug", slug)

	product, err := cache.LoadFresh(ctx, s.cache, productKey(slug), func(ctx context.Context) (*domain.Product, error) {
		return s.repo.GetProductBySlug(ctx, slug)
	})
	if errors.Is(err, domain.ErrProductNotFound) {
		return nil, err
	}
	if err != nil {
		s.logger.Error("Unable to get the product by slug", "slug", slug, "error", err)
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	s.logger.Debug("Getting product by ID", "id", id)

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrProductNotFound) {
		s.logger.Error("Unable to get the product by ID", "id", id, "error", err)
	}
	return product, err
}

// ListCategories returns every category ordered by name. A read failure
// returns an empty list along with the error.
func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	s.logger.Debug("Getting all categories")

	categories, err := cache.Load(ctx, s.cache, categoriesKey, s.repo.ListCategories)
	if err != nil {
		s.logger.Error("Unable to get categories", "error", err)
		return []*domain.Category{}, err
	}
	return categories, nil
}

// ReloadCategories is ListCategories bypassing any cached result
func (s *CatalogService) ReloadCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := cache.LoadFresh(ctx, s.cache, categoriesKey, s.repo.ListCategories)
	if err != nil {
		s.logger.Error("Unable to reload categories", "error", err)
		return []*domain.Category{}, err
	}
	return categories, nil
}

func (s *CatalogService) productsChanged() {
	s.cache.Invalidate(cache.BucketProducts)
	s.cache.Invalidate(cache.BucketProduct)
}

func (s *CatalogService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	s.logger.Debug("Adding new product", "slug", product.Slug)

	if errs := s.validation.Validate(product); len(errs) > 0 {
		return nil, errs
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		s.logger.Error("Unable to add product", "slug", product.Slug, "error", err)
		return nil, domain.NewWriteError("create", domain.KindProducts, err)
	}

	s.productsChanged()
	return created, nil
}

// UpdateProduct applies patch to the product with id. The patched product must
// still be valid.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	s.logger.Debug("Updating product", "id", id)

	if patch.IsEmpty() {
		return nil, domain.ErrEmptyPatch
	}

	current, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, domain.NewWriteError("update", domain.KindProducts, err)
	}
	patch.Apply(current, time.Now())
	if errs := s.validation.Validate(current); len(errs) > 0 {
		return nil, errs
	}

	updated, err := s.repo.UpdateProduct(ctx, id, patch)
	if err != nil {
		s.logger.Error("Unable to update product", "id", id, "error", err)
		return nil, domain.NewWriteError("update", domain.KindProducts, err)
	}

	s.productsChanged()
	return updated, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	s.logger.Debug("Deleting product", "id", id)

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		s.logger.Error("Unable to delete product", "id", id, "error", err)
		return domain.NewWriteError("delete", domain.KindProducts, err)
	}

	s.productsChanged()
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	s.logger.Debug("Adding new category", "slug", category.Slug)

	if errs := s.validation.Validate(category); len(errs) > 0 {
		return nil, errs
	}

	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		s.logger.Error("Unable to add category", "slug", category.Slug, "error", err)
		return nil, domain.NewWriteError("create", domain.KindCategories, err)
	}

	s.cache.Invalidate(cache.BucketCategories)
	return created, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error) {
	s.logger.Debug("Updating category", "id", id)

	if patch.IsEmpty() {
		return nil, domain.ErrEmptyPatch
	}

	updated, err := s.repo.UpdateCategory(ctx, id, patch)
	if err != nil {
		s.logger.Error("Unable to update category", "id", id, "error", err)
		return nil, domain.NewWriteError("update", domain.KindCategories, err)
	}

	s.cache.Invalidate(cache.BucketCategories)
	return updated, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	s.logger.Debug("Deleting category", "id", id)

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		s.logger.Error("Unable to delete category", "id", id, "error", err)
		return domain.NewWriteError("delete", domain.KindCategories, err)
	}

	s.cache.Invalidate(cache.BucketCategories)
	return nil
}

func (s *CatalogService) Close() error {
	s.once.Do(func() {
		s.logger.Info("Shutting down CatalogService...")
		s.stop()
		s.cache.Wait()
		s.logger.Info("CatalogService shutdown complete.")
	})
	return nil
}
