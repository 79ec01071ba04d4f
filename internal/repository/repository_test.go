package repository

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/kahvecikaan/probagno/internal/domain"
	"github.com/kahvecikaan/probagno/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func newProduct(slug string) *domain.Product {
	return &domain.Product{
		Name:      "Προϊόν " + slug,
		NameEn:    "Product " + slug,
		Slug:      slug,
		Category:  "vanities",
		BasePrice: 100,
		Dimensions: []domain.ProductDimension{
			{ID: "d1", Width: 60, Height: 50, Depth: 45, Price: 100, SKU: "SKU-60"},
		},
	}
}

func TestMemoryProductLifecycle(t *testing.T) {
	ctx := context.Background()
	bus := events.NewEventBus[events.Change]()
	sub := bus.Subscribe()
	repo := NewMemoryRepository(bus)

	created, err := repo.CreateProduct(ctx, newProduct("first"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, events.Change{Table: domain.KindProducts, Slug: "first"}, <-sub)

	_, err = repo.CreateProduct(ctx, newProduct("first"))
	assert.ErrorIs(t, err, domain.ErrDuplicateSlug)

	price := 250.0
	updated, err := repo.UpdateProduct(ctx, created.ID, domain.ProductPatch{BasePrice: &price})
	require.NoError(t, err)
	assert.Equal(t, 250.0, updated.BasePrice)
	assert.Equal(t, "Product first", updated.NameEn)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	<-sub

	bySlug, err := repo.GetProductBySlug(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, 250.0, bySlug.BasePrice)

	require.NoError(t, repo.DeleteProduct(ctx, created.ID))
	<-sub

	_, err = repo.GetProductByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.ErrorIs(t, repo.DeleteProduct(ctx, created.ID), domain.ErrProductNotFound)

	_, err = repo.UpdateProduct(ctx, created.ID, domain.ProductPatch{BasePrice: &price})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestMemoryListProductsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(nil)

	for _, slug := range []string{"a", "b", "c"} {
		_, err := repo.CreateProduct(ctx, newProduct(slug))
		require.NoError(t, err)
	}

	products, err := repo.ListProducts(ctx)
	require.NoError(t, err)

	var slugs []string
	for _, p := range products {
		slugs = append(slugs, p.Slug)
	}
	assert.Equal(t, []string{"c", "b", "a"}, slugs)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(nil)
	_, err := repo.CreateProduct(ctx, newProduct("a"))
	require.NoError(t, err)

	p, err := repo.GetProductBySlug(ctx, "a")
	require.NoError(t, err)
	p.Name = "changed"
	p.Dimensions[0].Price = 1

	again, err := repo.GetProductBySlug(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Προϊόν a", again.Name)
	assert.Equal(t, 100.0, again.Dimensions[0].Price)
}

func TestMemoryUpsertBySlug(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(nil)

	first, err := repo.UpsertProductBySlug(ctx, newProduct("a"))
	require.NoError(t, err)

	again := newProduct("a")
	again.NameEn = "Renamed"
	second, err := repo.UpsertProductBySlug(ctx, again)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	products, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Renamed", products[0].NameEn)
}

func TestMemoryCategories(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(nil)

	for _, c := range []domain.Category{
		{Name: "Καθρέπτες", NameEn: "Mirrors", Slug: "mirrors"},
		{Name: "Αξεσουάρ", NameEn: "Accessories", Slug: "accessories"},
		{Name: "Νιπτήρες", NameEn: "Vanities", Slug: "vanities"},
	} {
		c := c
		_, err := repo.CreateCategory(ctx, &c)
		require.NoError(t, err)
	}

	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "accessories", categories[0].Slug)
	assert.Equal(t, "mirrors", categories[1].Slug)
	assert.Equal(t, "vanities", categories[2].Slug)

	name := "Έπιπλα"
	updated, err := repo.UpdateCategory(ctx, categories[2].ID, domain.CategoryPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Έπιπλα", updated.Name)

	require.NoError(t, repo.DeleteCategory(ctx, updated.ID))
	assert.ErrorIs(t, repo.DeleteCategory(ctx, updated.ID), domain.ErrCategoryNotFound)

	_, err = repo.CreateCategory(ctx, &domain.Category{Name: "x", NameEn: "x", Slug: "mirrors"})
	assert.ErrorIs(t, err, domain.ErrDuplicateSlug)
}

func TestMemorySettings(t *testing.T) {
	ctx := context.Background()
	bus := events.NewEventBus[events.Change]()
	sub := bus.Subscribe()
	repo := NewMemoryRepository(bus)

	_, ok, err := repo.GetSetting(ctx, "shipping")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.UpsertSetting(ctx, "shipping", json.RawMessage(`{"standardShippingCost":20}`)))
	assert.Equal(t, events.Change{Table: domain.KindSettings, Key: "shipping"}, <-sub)

	value, ok, err := repo.GetSetting(ctx, "shipping")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"standardShippingCost":20}`, string(value))
}

func TestProductRowRoundTrip(t *testing.T) {
	p := newProduct("round-trip")
	p.ID = "2b7f3f1c-52c5-4a3b-8d43-4f3f0e0f6a11"
	p.Subcategory = "wall"
	p.SalePrice = domain.Price(80)
	p.Tags = []string{"vanities"}
	p.Images = []domain.ProductImage{{ID: "i1", URL: "https://img/1.jpg", IsPrimary: true}}
	p.Materials = []string{"oak"}
	p.Colors = []string{"white"}
	p.Features = []string{"soft close"}
	p.InStock = true
	p.BestSeller = true
	p.CreatedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p.UpdatedAt = p.CreatedAt

	row := toProductRow(p)
	assert.Equal(t, "wall", *row.Subcategory)

	assert.Equal(t, p, row.toDomain())
}

func TestProductRowDropsUnsetOptionals(t *testing.T) {
	p := newProduct("plain")
	p.SalePrice = domain.Price(0)

	row := toProductRow(p)

	assert.Nil(t, row.SalePrice)
	assert.Nil(t, row.Subcategory)
	assert.Equal(t, []string{}, row.Tags)
}

func TestCategoryRowRoundTrip(t *testing.T) {
	c := &domain.Category{ID: "c1", Name: "Καθρέπτες", NameEn: "Mirrors", Slug: "mirrors", Image: "m.jpg", ProductCount: 3}

	row := toCategoryRow(c)
	assert.Nil(t, row.Description)

	assert.Equal(t, c, row.toDomain())
}

func TestPatchColumnsExistInSchema(t *testing.T) {
	s, err := schema.Parse(&productRow{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	name, base, sale, in, feat, best, sub := "n", 1.0, 2.0, true, true, true, "s"
	patch := domain.ProductPatch{
		Name: &name, NameEn: &name, Description: &name, DescriptionEn: &name, Category: &name,
		Subcategory: &sub, Tags: []string{}, BasePrice: &base, SalePrice: &sale,
		Images: []domain.ProductImage{}, Dimensions: []domain.ProductDimension{},
		Materials: []string{}, Colors: []string{}, Features: []string{},
		InStock: &in, Featured: &feat, BestSeller: &best,
	}

	for col := range patch.Columns() {
		assert.NotNil(t, s.LookUpField(col), "column %s", col)
	}

	cs, err := schema.Parse(&categoryRow{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	count := 1
	for col := range (domain.CategoryPatch{Name: &name, NameEn: &name, Description: &name, Image: &name, ProductCount: &count}).Columns() {
		assert.NotNil(t, cs.LookUpField(col), "column %s", col)
	}
}

func TestStorageValuesEncodesDocuments(t *testing.T) {
	out, err := storageValues(map[string]any{
		"colors":     []string{"white"},
		"base_price": 10.0,
	})
	require.NoError(t, err)

	assert.Equal(t, `["white"]`, out["colors"])
	assert.Equal(t, 10.0, out["base_price"])
}

func TestPostgresRejectsNonUUIDIDs(t *testing.T) {
	// rejected before any query is sent, so no database is needed
	r := &PostgresRepository{}
	ctx := context.Background()
	name := "Mirror"

	_, err := r.GetProductByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	_, err = r.UpdateProduct(ctx, "not-a-uuid", domain.ProductPatch{NameEn: &name})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.ErrorIs(t, r.DeleteProduct(ctx, "../1"), domain.ErrProductNotFound)

	_, err = r.UpdateCategory(ctx, "42", domain.CategoryPatch{NameEn: &name})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	assert.ErrorIs(t, r.DeleteCategory(ctx, "42"), domain.ErrCategoryNotFound)
}
