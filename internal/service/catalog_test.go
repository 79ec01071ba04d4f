package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/probagno/internal/cache"
	"github.com/kahvecikaan/probagno/internal/domain"
	"github.com/kahvecikaan/probagno/internal/events"
	"github.com/kahvecikaan/probagno/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepo counts list calls and can be switched to fail
type countingRepo struct {
	*repository.MemoryRepository
	lists atomic.Int32
	fail  atomic.Bool
}

var errBackend = errors.New("backend unavailable")

func (r *countingRepo) ListProducts(ctx context.Context) (domain.Products, error) {
	r.lists.Add(1)
	if r.fail.Load() {
		return nil, errBackend
	}
	return r.MemoryRepository.ListProducts(ctx)
}

func (r *countingRepo) CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if r.fail.Load() {
		return nil, errBackend
	}
	return r.MemoryRepository.CreateProduct(ctx, p)
}

func (r *countingRepo) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if r.fail.Load() {
		return nil, errBackend
	}
	return r.MemoryRepository.UpdateProduct(ctx, id, patch)
}

func (r *countingRepo) DeleteCategory(ctx context.Context, id string) error {
	if r.fail.Load() {
		return errBackend
	}
	return r.MemoryRepository.DeleteCategory(ctx, id)
}

func (r *countingRepo) UpsertProductBySlug(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if r.fail.Load() && p.Slug == "nova-vanity" {
		return nil, errBackend
	}
	return r.MemoryRepository.UpsertProductBySlug(ctx, p)
}

func (r *countingRepo) GetSetting(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if r.fail.Load() {
		return nil, false, errBackend
	}
	return r.MemoryRepository.GetSetting(ctx, key)
}

type fixture struct {
	repo     *countingRepo
	bus      *events.ChangeBus
	cache    *cache.QueryCache
	catalog  *CatalogService
	settings *SettingsService
}

// newFixture stores seed before the service subscribes, so no change
// signal for them is in flight
func newFixture(t *testing.T, seed ...*domain.Product) *fixture {
	t.Helper()
	bus := events.NewEventBus[events.Change]()
	repo := &countingRepo{MemoryRepository: repository.NewMemoryRepository(bus)}
	for _, p := range seed {
		_, err := repo.MemoryRepository.CreateProduct(context.Background(), p)
		require.NoError(t, err)
	}
	qc := cache.New(cache.Options{})
	log := hclog.NewNullLogger()

	f := &fixture{
		repo:     repo,
		bus:      bus,
		cache:    qc,
		catalog:  NewCatalogService(repo, qc, events.NewBusNotifier(bus), log),
		settings: NewSettingsService(repo, qc, log),
	}
	t.Cleanup(func() { f.catalog.Close() })
	return f
}

func validProduct(slug string) *domain.Product {
	return &domain.Product{
		Name:       "Νιπτήρας " + slug,
		NameEn:     "Vanity " + slug,
		Slug:       slug,
		Category:   "vanities",
		BasePrice:  300,
		Dimensions: []domain.ProductDimension{{ID: slug + "-60", Width: 60, Price: 300}},
	}
}

func TestListProductsUsesCache(t *testing.T) {
	f := newFixture(t, validProduct("a"))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		products, err := f.catalog.ListProducts(ctx)
		require.NoError(t, err)
		assert.Len(t, products, 1)
	}
	assert.Equal(t, int32(1), f.repo.lists.Load())
}

func TestListProductsDegradesToEmpty(t *testing.T) {
	f := newFixture(t)
	f.repo.fail.Store(true)

	products, err := f.catalog.ListProducts(context.Background())

	assert.ErrorIs(t, err, errBackend)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	f.repo.fail.Store(false)
	products, err = f.catalog.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, int32(2), f.repo.lists.Load())
}

func TestMutationInvalidatesProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	products, err := f.catalog.ListProducts(ctx)
	require.NoError(t, err)
	require.Empty(t, products)

	_, err = f.catalog.CreateProduct(ctx, validProduct("fresh"))
	require.NoError(t, err)
	assert.True(t, f.cache.IsStale(productsKey))

	products, err = f.catalog.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestChangeSignalInvalidatesProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.ListProducts(ctx)
	require.NoError(t, err)

	// a write that bypasses the service still reaches the cache through the bus
	_, err = f.repo.MemoryRepository.CreateProduct(ctx, validProduct("external"))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return f.cache.IsStale(productsKey) }, time.Second, time.Millisecond)
}

func TestActiveProductsRefetchOnChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	release := f.catalog.ActivateProducts()
	defer release()

	_, err := f.repo.MemoryRepository.CreateProduct(ctx, validProduct("external"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		v, ok := f.cache.Peek(productsKey)
		return ok && len(v.(domain.Products)) == 1
	}, time.Second, time.Millisecond)
}

func TestWriteFailureIsTypedAndLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.catalog.CreateProduct(ctx, validProduct("stable"))
	require.NoError(t, err)

	f.repo.fail.Store(true)
	price := 999.0
	_, err = f.catalog.UpdateProduct(ctx, created.ID, domain.ProductPatch{BasePrice: &price})

	var we *domain.WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "update", we.Op)
	assert.Equal(t, domain.KindProducts, we.Entity)
	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, "unable to update products: backend unavailable", err.Error())

	_, err = f.catalog.CreateProduct(ctx, validProduct("another"))
	require.ErrorAs(t, err, &we)

	f.repo.fail.Store(false)
	p, err := f.catalog.GetProductBySlug(ctx, "stable")
	require.NoError(t, err)
	assert.Equal(t, 300.0, p.BasePrice)

	products, err := f.catalog.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestValidationRunsBeforeWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := validProduct("Not A Slug")
	bad.Dimensions = nil
	_, err := f.catalog.CreateProduct(ctx, bad)

	var ve domain.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve, 2)

	products, _ := f.repo.MemoryRepository.ListProducts(ctx)
	assert.Empty(t, products)
}

func TestUpdateRejectsEmptyAndInvalidPatches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.catalog.CreateProduct(ctx, validProduct("patched"))
	require.NoError(t, err)

	_, err = f.catalog.UpdateProduct(ctx, created.ID, domain.ProductPatch{})
	assert.ErrorIs(t, err, domain.ErrEmptyPatch)

	_, err = f.catalog.UpdateProduct(ctx, created.ID, domain.ProductPatch{Dimensions: []domain.ProductDimension{}})
	var ve domain.ValidationErrors
	assert.ErrorAs(t, err, &ve)

	price := 10.0
	_, err = f.catalog.UpdateProduct(ctx, "missing", domain.ProductPatch{BasePrice: &price})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestGetProductBySlugIsFresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.catalog.CreateProduct(ctx, validProduct("oak"))
	require.NoError(t, err)

	before, err := f.catalog.GetProductBySlug(ctx, "oak")
	require.NoError(t, err)
	assert.Equal(t, "Vanity oak", before.NameEn)

	name := "Oak Vanity 2"
	_, err = f.catalog.UpdateProduct(ctx, created.ID, domain.ProductPatch{NameEn: &name})
	require.NoError(t, err)

	after, err := f.catalog.GetProductBySlug(ctx, "oak")
	require.NoError(t, err)
	assert.Equal(t, "Oak Vanity 2", after.NameEn)

	_, err = f.catalog.GetProductBySlug(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCategoryMutations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.catalog.CreateCategory(ctx, &domain.Category{Name: "Καθρέπτες", NameEn: "Mirrors", Slug: "mirrors"})
	require.NoError(t, err)

	categories, err := f.catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)

	name := "Mirrors & Lights"
	updated, err := f.catalog.UpdateCategory(ctx, created.ID, domain.CategoryPatch{NameEn: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.NameEn)
	assert.True(t, f.cache.IsStale(categoriesKey))

	f.repo.fail.Store(true)
	err = f.catalog.DeleteCategory(ctx, created.ID)
	var we *domain.WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, domain.KindCategories, we.Entity)

	f.repo.fail.Store(false)
	require.NoError(t, f.catalog.DeleteCategory(ctx, created.ID))
	assert.ErrorIs(t, f.catalog.DeleteCategory(ctx, created.ID), domain.ErrCategoryNotFound)
}

func TestSeedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.catalog.Seed(ctx))
	require.NoError(t, f.catalog.Seed(ctx))

	products, err := f.catalog.ReloadProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, len(SeedProducts()))

	seen := map[string]int{}
	for _, p := range products {
		seen[p.Slug]++
	}
	for slug, n := range seen {
		assert.Equal(t, 1, n, slug)
	}

	categories, err := f.catalog.ReloadCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, len(SeedCategories()))
}

func TestSeedContinuesPastFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.repo.fail.Store(true)

	err := f.catalog.Seed(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errBackend)
	assert.Contains(t, err.Error(), "nova-vanity")

	products, _ := f.repo.MemoryRepository.ListProducts(ctx)
	assert.Len(t, products, len(SeedProducts())-1)
}

func TestSeedDataIsValid(t *testing.T) {
	v := domain.NewValidation()
	for _, p := range SeedProducts() {
		assert.Empty(t, v.Validate(p), p.Slug)
	}
	for _, c := range SeedCategories() {
		assert.Empty(t, v.Validate(c), c.Slug)
	}
}
