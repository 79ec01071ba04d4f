package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kahvecikaan/probagno/internal/domain"
	"github.com/kahvecikaan/probagno/internal/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mutex      sync.Mutex
	products   domain.Products
	categories []*domain.Category
	err        error
	notifier   *events.BusNotifier
}

func newFakeSource(bus *events.ChangeBus) *fakeSource {
	return &fakeSource{notifier: events.NewBusNotifier(bus)}
}

func (f *fakeSource) set(products domain.Products, categories []*domain.Category) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.products, f.categories = products, categories
}

func (f *fakeSource) fail(err error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.err = err
}

func (f *fakeSource) ReloadProducts(context.Context) (domain.Products, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f *fakeSource) ReloadCategories(context.Context) ([]*domain.Category, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

func (f *fakeSource) Watch(filter events.Filter, fn func(events.Change)) func() {
	return f.notifier.OnInvalidate(filter, fn)
}

var catalogEpoch = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func catalogProduct(id, category string, price float64, age int) *domain.Product {
	p, _ := cartProduct(id, price)
	p.Category = category
	p.CreatedAt = catalogEpoch.Add(time.Duration(age) * time.Hour)
	return p
}

func sampleCatalog() (domain.Products, []*domain.Category) {
	products := domain.Products{
		catalogProduct("v1", "vanities", 400, 6),
		catalogProduct("v2", "vanities", 520, 5),
		catalogProduct("v3", "vanities", 610, 4),
		catalogProduct("m1", "mirrors", 180, 3),
		catalogProduct("v4", "vanities", 700, 2),
		catalogProduct("v5", "vanities", 880, 1),
		catalogProduct("v6", "vanities", 950, 0),
	}
	products[0].Featured = true
	products[3].Featured = true
	products[3].BestSeller = true
	products[3].Description = "Στρογγυλός καθρέπτης LED"

	categories := []*domain.Category{
		{ID: "c1", Name: "Καθρέπτες", NameEn: "Mirrors", Slug: "mirrors", ProductCount: 40},
		{ID: "c2", Name: "Νιπτήρες", NameEn: "Vanities", Slug: "vanities"},
		{ID: "c3", Name: "Ντουλάπια", NameEn: "Cabinets", Slug: "cabinets", ProductCount: 2},
	}
	return products, categories
}

func newTestCatalog(t *testing.T) (*Catalog, *fakeSource, *events.ChangeBus, *MemoryPersister[CatalogSnapshot]) {
	t.Helper()
	bus := events.NewEventBus[events.Change]()
	src := newFakeSource(bus)
	src.set(sampleCatalog())
	persist := NewMemoryPersister(CatalogSnapshot{})

	c := NewCatalog(src, persist, nil)
	require.NoError(t, c.Init(context.Background()))
	t.Cleanup(c.Close)
	return c, src, bus, persist
}

func TestCatalogAccessors(t *testing.T) {
	c, _, _, _ := newTestCatalog(t)

	p, ok := c.ProductBySlug("m1")
	require.True(t, ok)
	assert.Equal(t, "mirrors", p.Category)

	_, ok = c.ProductByID("nope")
	assert.False(t, ok)

	assert.Len(t, c.ProductsByCategory("vanities"), 6)
	assert.Len(t, c.Featured(), 2)
	assert.Len(t, c.BestSellers(), 1)
	assert.Len(t, c.Search("led"), 1)
	assert.Len(t, c.Search("V1"), 1)
}

func TestCatalogRelated(t *testing.T) {
	c, _, _, _ := newTestCatalog(t)
	v1, _ := c.ProductByID("v1")

	related := c.Related(v1, 0)
	require.Len(t, related, DefaultRelatedLimit)
	for _, p := range related {
		assert.Equal(t, "vanities", p.Category)
		assert.NotEqual(t, "v1", p.ID)
	}

	assert.Len(t, c.Related(v1, 10), 5)

	m1, _ := c.ProductByID("m1")
	assert.Empty(t, c.Related(m1, 4))
}

func TestCatalogDerivesProductCount(t *testing.T) {
	c, _, _, _ := newTestCatalog(t)

	counts := map[string]int{}
	for _, cat := range c.Categories() {
		counts[cat.Slug] = cat.ProductCount
	}
	assert.Equal(t, map[string]int{"mirrors": 1, "vanities": 6, "cabinets": 0}, counts)
}

func TestCatalogDashboard(t *testing.T) {
	c, _, _, _ := newTestCatalog(t)

	d := c.Dashboard()
	assert.Equal(t, 7, d.TotalProducts)
	assert.Equal(t, 3, d.TotalCategories)
	assert.True(t, decimal.NewFromInt(4240).Equal(d.CatalogValue), d.CatalogValue.String())
	assert.Equal(t, 2, d.FeaturedCount)
	assert.Equal(t, 29, d.FeaturedShare)

	require.Len(t, d.RecentProducts, 5)
	assert.Equal(t, "v1", d.RecentProducts[0].ID)
	assert.Equal(t, "v4", d.RecentProducts[4].ID)
}

func TestCatalogDashboardEmpty(t *testing.T) {
	c := NewCatalog(newFakeSource(events.NewEventBus[events.Change]()), NewMemoryPersister(CatalogSnapshot{}), nil)

	d := c.Dashboard()
	assert.Equal(t, 0, d.FeaturedShare)
	assert.Empty(t, d.RecentProducts)
}

func TestCatalogReloadsOnChange(t *testing.T) {
	c, src, bus, _ := newTestCatalog(t)

	products, categories := sampleCatalog()
	src.set(products[:2], categories)
	bus.Publish(events.Change{Table: domain.KindProducts, Slug: "v3"})

	require.Eventually(t, func() bool { return len(c.Products()) == 2 }, time.Second, 5*time.Millisecond)
}

func TestCatalogCloseStopsReloading(t *testing.T) {
	c, src, bus, _ := newTestCatalog(t)
	c.Close()

	src.set(nil, nil)
	bus.Publish(events.Change{Table: domain.KindProducts})
	time.Sleep(20 * time.Millisecond)

	assert.Len(t, c.Products(), 7)
}

func TestCatalogKeepsSnapshotOnFailure(t *testing.T) {
	products, categories := sampleCatalog()
	persist := NewMemoryPersister(CatalogSnapshot{Products: products, Categories: categories})
	src := newFakeSource(events.NewEventBus[events.Change]())
	src.fail(errors.New("offline"))

	c := NewCatalog(src, persist, nil)
	err := c.Init(context.Background())
	defer c.Close()

	assert.Error(t, err)
	assert.Len(t, c.Products(), 7)
	assert.Len(t, c.Categories(), 3)
}

func TestCatalogPersistsAndResets(t *testing.T) {
	c, _, _, persist := newTestCatalog(t)

	saved, _ := persist.Load()
	assert.Len(t, saved.Products, 7)

	c.Reset()
	assert.Empty(t, c.Products())
	saved, _ = persist.Load()
	assert.Empty(t, saved.Products)
}
