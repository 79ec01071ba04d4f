package repository

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kahvecikaan/probagno/internal/domain"
	"github.com/kahvecikaan/probagno/internal/events"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// MemoryRepository keeps every table in process memory
type MemoryRepository struct {
	products   []*domain.Product
	categories []*domain.Category
	settings   map[string]json.RawMessage
	mutex      sync.RWMutex
	bus        *events.ChangeBus
	lastStamp  time.Time
}

// NewMemoryRepository creates an empty repository publishing changes on bus.
// bus may be nil.
func NewMemoryRepository(bus *events.ChangeBus) *MemoryRepository {
	return &MemoryRepository{
		settings: make(map[string]json.RawMessage),
		bus:      bus,
	}
}

func (r *MemoryRepository) publish(c events.Change) {
	if r.bus != nil {
		r.bus.Publish(c)
	}
}

// stamp returns a strictly increasing timestamp so creation order is total
func (r *MemoryRepository) stamp() time.Time {
	now := time.Now().UTC()
	if !now.After(r.lastStamp) {
		now = r.lastStamp.Add(time.Microsecond)
	}
	r.lastStamp = now
	return now
}

func (r *MemoryRepository) ListProducts(ctx context.Context) (domain.Products, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	products := make(domain.Products, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, p.Clone())
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (r *MemoryRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if i := r.productIndex(func(p *domain.Product) bool { return p.ID == id }); i >= 0 {
		return r.products[i].Clone(), nil
	}
	return nil, domain.ErrProductNotFound
}

func (r *MemoryRepository) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if i := r.productIndex(func(p *domain.Product) bool { return p.Slug == slug }); i >= 0 {
		return r.products[i].Clone(), nil
	}
	return nil, domain.ErrProductNotFound
}

func (r *MemoryRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.productIndex(func(p *domain.Product) bool { return p.Slug == product.Slug }) >= 0 {
		return nil, domain.ErrDuplicateSlug
	}

	stored := product.Clone()
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	stored.CreatedAt = r.stamp()
	stored.UpdatedAt = stored.CreatedAt
	r.products = append(r.products, stored)

	r.publish(events.Change{Table: domain.KindProducts, Slug: stored.Slug})
	return stored.Clone(), nil
}

func (r *MemoryRepository) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	i := r.productIndex(func(p *domain.Product) bool { return p.ID == id })
	if i < 0 {
		return nil, domain.ErrProductNotFound
	}

	updated := r.products[i].Clone()
	patch.Apply(updated, r.stamp())
	r.products[i] = updated

	r.publish(events.Change{Table: domain.KindProducts, Slug: updated.Slug})
	return updated.Clone(), nil
}

func (r *MemoryRepository) DeleteProduct(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	i := r.productIndex(func(p *domain.Product) bool { return p.ID == id })
	if i < 0 {
		return domain.ErrProductNotFound
	}

	slug := r.products[i].Slug
	r.products = append(r.products[:i], r.products[i+1:]...)

	r.publish(events.Change{Table: domain.KindProducts, Slug: slug})
	return nil
}

func (r *MemoryRepository) UpsertProductBySlug(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	stored := product.Clone()
	i := r.productIndex(func(p *domain.Product) bool { return p.Slug == product.Slug })
	if i >= 0 {
		stored.ID = r.products[i].ID
		stored.CreatedAt = r.products[i].CreatedAt
		stored.UpdatedAt = r.stamp()
		r.products[i] = stored
	} else {
		stored.ID = uuid.New().String()
		stored.CreatedAt = r.stamp()
		stored.UpdatedAt = stored.CreatedAt
		r.products = append(r.products, stored)
	}

	r.publish(events.Change{Table: domain.KindProducts, Slug: stored.Slug})
	return stored.Clone(), nil
}

func (r *MemoryRepository) productIndex(match func(*domain.Product) bool) int {
	for i, p := range r.products {
		if match(p) {
			return i
		}
	}
	return -1
}

func (r *MemoryRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	categories := make([]*domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		cc := *c
		categories = append(categories, &cc)
	}
	sortCategoriesByName(categories)
	return categories, nil
}

func (r *MemoryRepository) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.categoryIndex(func(c *domain.Category) bool { return c.Slug == category.Slug }) >= 0 {
		return nil, domain.ErrDuplicateSlug
	}

	stored := *category
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	r.categories = append(r.categories, &stored)

	r.publish(events.Change{Table: domain.KindCategories, Slug: stored.Slug})
	out := stored
	return &out, nil
}

func (r *MemoryRepository) UpdateCategory(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	i := r.categoryIndex(func(c *domain.Category) bool { return c.ID == id })
	if i < 0 {
		return nil, domain.ErrCategoryNotFound
	}

	updated := *r.categories[i]
	patch.Apply(&updated)
	r.categories[i] = &updated

	r.publish(events.Change{Table: domain.KindCategories, Slug: updated.Slug})
	out := updated
	return &out, nil
}

func (r *MemoryRepository) DeleteCategory(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	i := r.categoryIndex(func(c *domain.Category) bool { return c.ID == id })
	if i < 0 {
		return domain.ErrCategoryNotFound
	}

	slug := r.categories[i].Slug
	r.categories = append(r.categories[:i], r.categories[i+1:]...)

	r.publish(events.Change{Table: domain.KindCategories, Slug: slug})
	return nil
}

func (r *MemoryRepository) UpsertCategoryBySlug(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	stored := *category
	i := r.categoryIndex(func(c *domain.Category) bool { return c.Slug == category.Slug })
	if i >= 0 {
		stored.ID = r.categories[i].ID
		r.categories[i] = &stored
	} else {
		stored.ID = uuid.New().String()
		r.categories = append(r.categories, &stored)
	}

	r.publish(events.Change{Table: domain.KindCategories, Slug: stored.Slug})
	out := stored
	return &out, nil
}

func (r *MemoryRepository) categoryIndex(match func(*domain.Category) bool) int {
	for i, c := range r.categories {
		if match(c) {
			return i
		}
	}
	return -1
}

func (r *MemoryRepository) GetSetting(ctx context.Context, key string) (json.RawMessage, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	value, ok := r.settings[key]
	if !ok {
		return nil, false, nil
	}
	return append(json.RawMessage(nil), value...), true, nil
}

func (r *MemoryRepository) UpsertSetting(ctx context.Context, key string, value json.RawMessage) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.settings[key] = append(json.RawMessage(nil), value...)

	r.publish(events.Change{Table: domain.KindSettings, Key: key})
	return nil
}

// sortCategoriesByName orders categories by their Greek display name
func sortCategoriesByName(categories []*domain.Category) {
	c := collate.New(language.Greek)
	sort.SliceStable(categories, func(i, j int) bool {
		return c.CompareString(categories[i].Name, categories[j].Name) < 0
	})
}
