package store

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/probagno/internal/domain"
	"github.com/kahvecikaan/probagno/internal/events"
	"github.com/kahvecikaan/probagno/internal/filter"
	"github.com/shopspring/decimal"
)

// CatalogVersion is the version of the persisted catalog snapshot
const CatalogVersion = 1

// DefaultRelatedLimit is the number of related products shown on a detail page
const DefaultRelatedLimit = 4

const recentProducts = 5

// Source provides fresh catalog data and change signals
type Source interface {
	ReloadProducts(ctx context.Context) (domain.Products, error)
	ReloadCategories(ctx context.Context) ([]*domain.Category, error)
	Watch(filter events.Filter, fn func(events.Change)) (cancel func())
}

// CatalogSnapshot is the persisted state of a Catalog
type CatalogSnapshot struct {
	Products   domain.Products    `json:"products"`
	Categories []*domain.Category `json:"categories"`
}

// Catalog holds the latest products and categories and the views derived
// from them. Products returned by accessors are shared and must not be
// modified.
type Catalog struct {
	source   Source
	persist  Persister[CatalogSnapshot]
	log      hclog.Logger
	snapshot CatalogSnapshot
	cancels  []func()
	mutex    sync.RWMutex
	watchMu  sync.Mutex
}

func NewCatalog(source Source, persist Persister[CatalogSnapshot], log hclog.Logger) *Catalog {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Catalog{source: source, persist: persist, log: log}
}

// Init restores the persisted snapshot, reloads from the source and starts
// reloading on every product or category change. A failed reload keeps the
// restored snapshot and is returned.
func (c *Catalog) Init(ctx context.Context) error {
	snap, err := c.persist.Load()
	if err != nil {
		c.log.Error("Unable to restore catalog snapshot", "error", err)
	}
	c.mutex.Lock()
	c.snapshot = snap
	c.mutex.Unlock()

	c.watch()
	return c.Reload(ctx)
}

func (c *Catalog) watch() {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()

	if len(c.cancels) > 0 {
		return
	}
	for _, table := range []domain.EntityKind{domain.KindProducts, domain.KindCategories} {
		table := table
		cancel := c.source.Watch(events.Filter{Table: table}, func(ch events.Change) {
			c.log.Debug("Catalog changed", "table", ch.Table, "slug", ch.Slug)
			if err := c.reload(context.Background(), table); err != nil {
				c.log.Error("Unable to reload catalog", "table", table, "error", err)
			}
		})
		c.cancels = append(c.cancels, cancel)
	}
}

// Reload fetches products and categories. Whatever loads is kept even when
// the other half fails.
func (c *Catalog) Reload(ctx context.Context) error {
	return errors.Join(
		c.reload(ctx, domain.KindProducts),
		c.reload(ctx, domain.KindCategories),
	)
}

func (c *Catalog) reload(ctx context.Context, table domain.EntityKind) error {
	switch table {
	case domain.KindProducts:
		products, err := c.source.ReloadProducts(ctx)
		if err != nil {
			return err
		}
		c.update(func(s *CatalogSnapshot) { s.Products = products })
	case domain.KindCategories:
		categories, err := c.source.ReloadCategories(ctx)
		if err != nil {
			return err
		}
		c.update(func(s *CatalogSnapshot) { s.Categories = categories })
	}
	return nil
}

func (c *Catalog) update(fn func(*CatalogSnapshot)) {
	c.mutex.Lock()
	fn(&c.snapshot)
	snap := c.snapshot
	c.mutex.Unlock()

	if err := c.persist.Save(snap); err != nil {
		c.log.Error("Unable to persist catalog snapshot", "error", err)
	}
}

// Reset drops the snapshot. Change subscriptions stay active.
func (c *Catalog) Reset() {
	c.update(func(s *CatalogSnapshot) { *s = CatalogSnapshot{} })
}

// Close stops reloading on changes
func (c *Catalog) Close() {
	c.watchMu.Lock()
	cancels := c.cancels
	c.cancels = nil
	c.watchMu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Products returns every product, newest first
func (c *Catalog) Products() domain.Products {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return append(domain.Products{}, c.snapshot.Products...)
}

func (c *Catalog) find(match func(*domain.Product) bool) (*domain.Product, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	for _, p := range c.snapshot.Products {
		if match(p) {
			return p, true
		}
	}
	return nil, false
}

func (c *Catalog) ProductByID(id string) (*domain.Product, bool) {
	return c.find(func(p *domain.Product) bool { return p.ID == id })
}

func (c *Catalog) ProductBySlug(slug string) (*domain.Product, bool) {
	return c.find(func(p *domain.Product) bool { return p.Slug == slug })
}

func (c *Catalog) where(match func(*domain.Product) bool) domain.Products {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	out := domain.Products{}
	for _, p := range c.snapshot.Products {
		if match(p) {
			out = append(out, p)
		}
	}
	return out
}

// ProductsByCategory returns the products whose category is the given slug
func (c *Catalog) ProductsByCategory(category string) domain.Products {
	return c.where(func(p *domain.Product) bool { return p.Category == category })
}

func (c *Catalog) Featured() domain.Products {
	return c.where(func(p *domain.Product) bool { return p.Featured })
}

func (c *Catalog) BestSellers() domain.Products {
	return c.where(func(p *domain.Product) bool { return p.BestSeller })
}

// Search matches query against the names and description, ignoring case
func (c *Catalog) Search(query string) domain.Products {
	return filter.Search(c.Products(), query)
}

// Related returns up to limit other products of the same category.
// A limit of zero or less uses DefaultRelatedLimit.
func (c *Catalog) Related(product *domain.Product, limit int) domain.Products {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	related := c.where(func(p *domain.Product) bool {
		return p.Category == product.Category && p.ID != product.ID
	})
	if len(related) > limit {
		related = related[:limit]
	}
	return related
}

// Categories returns copies of the categories with ProductCount counted from
// the current products
func (c *Catalog) Categories() []*domain.Category {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	counts := make(map[string]int)
	for _, p := range c.snapshot.Products {
		counts[p.Category]++
	}

	out := make([]*domain.Category, 0, len(c.snapshot.Categories))
	for _, cat := range c.snapshot.Categories {
		cc := *cat
		cc.ProductCount = counts[cat.Slug]
		out = append(out, &cc)
	}
	return out
}

// Dashboard summarises the catalog for the admin overview
type Dashboard struct {
	TotalProducts   int             `json:"totalProducts"`
	TotalCategories int             `json:"totalCategories"`
	CatalogValue    decimal.Decimal `json:"catalogValue"`
	FeaturedCount   int             `json:"featuredCount"`
	// Rounded percentage of featured products
	FeaturedShare  int             `json:"featuredShare"`
	RecentProducts domain.Products `json:"recentProducts"`
}

func (c *Catalog) Dashboard() Dashboard {
	c.mutex.RLock()
	products := append(domain.Products{}, c.snapshot.Products...)
	categories := len(c.snapshot.Categories)
	c.mutex.RUnlock()

	d := Dashboard{
		TotalProducts:   len(products),
		TotalCategories: categories,
		CatalogValue:    decimal.Zero,
	}
	for _, p := range products {
		d.CatalogValue = d.CatalogValue.Add(decimal.NewFromFloat(p.BasePrice))
		if p.Featured {
			d.FeaturedCount++
		}
	}
	if d.TotalProducts > 0 {
		d.FeaturedShare = int(math.Round(float64(d.FeaturedCount) / float64(d.TotalProducts) * 100))
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	if len(products) > recentProducts {
		products = products[:recentProducts]
	}
	d.RecentProducts = products
	return d
}
