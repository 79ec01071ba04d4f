package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() *Product {
	return &Product{
		Name:      "Νιπτήρας",
		NameEn:    "Vanity",
		Slug:      "ardesia-vanity",
		Category:  "vanities",
		BasePrice: 100,
		Dimensions: []ProductDimension{
			{ID: "d1", Width: 80, Height: 50, Depth: 45, Price: 100, SKU: "ARD-80"},
		},
	}
}

func TestSlugValidation(t *testing.T) {
	testCases := []struct {
		name  string
		slug  string
		valid bool
	}{
		{"Valid slug", "ardesia-vanity", true},
		{"Valid slug with digits", "mirror-80", true},
		{"Valid single word", "mirror", true},
		{"Invalid slug - Uppercase", "Ardesia-vanity", false},
		{"Invalid slug - Spaces", "ardesia vanity", false},
		{"Invalid slug - Double hyphen", "ardesia--vanity", false},
		{"Invalid slug - Trailing hyphen", "ardesia-", false},
	}

	v := NewValidation()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := validProduct()
			p.Slug = tc.slug

			errs := v.Validate(p)

			if tc.valid {
				assert.Empty(t, errs)
			} else {
				assert.NotEmpty(t, errs)
			}
		})
	}
}

func TestProductRequiresDimension(t *testing.T) {
	p := validProduct()
	p.Dimensions = nil

	errs := NewValidation().Validate(p)

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Field, "Dimensions")
}

func TestPriceRule(t *testing.T) {
	p := validProduct()
	p.BasePrice = 120
	p.Dimensions = append(p.Dimensions, ProductDimension{ID: "d2", Price: 150})

	assert.Equal(t, 100.0, p.EffectivePrice())
	assert.Equal(t, 150.0, p.PriceFor(p.Dimensions[1]))
	assert.False(t, p.HasDiscount())

	p.SalePrice = Price(90)
	assert.Equal(t, 90.0, p.EffectivePrice())
	assert.Equal(t, 90.0, p.PriceFor(p.Dimensions[1]))
	assert.True(t, p.HasDiscount())
	assert.Equal(t, 25, p.DiscountPercent())

	p.SalePrice = Price(0)
	assert.Equal(t, 100.0, p.EffectivePrice())

	p.Dimensions = nil
	assert.Equal(t, 120.0, p.EffectivePrice())
}

func TestProductPatchColumns(t *testing.T) {
	nameEn := "New name"
	price := 250.0
	best := true
	sale := 0.0

	patch := ProductPatch{
		NameEn:     &nameEn,
		BasePrice:  &price,
		BestSeller: &best,
		SalePrice:  &sale,
		Colors:     []string{"white"},
	}

	cols := patch.Columns()

	assert.Equal(t, map[string]any{
		"name_en":     "New name",
		"base_price":  250.0,
		"best_seller": true,
		"sale_price":  nil,
		"colors":      []string{"white"},
	}, cols)
	assert.False(t, patch.IsEmpty())
	assert.True(t, ProductPatch{}.IsEmpty())
}

func TestColumnNamingRoundTrip(t *testing.T) {
	for _, field := range []string{"nameEn", "descriptionEn", "basePrice", "salePrice", "inStock", "bestSeller", "productCount"} {
		t.Run(field, func(t *testing.T) {
			assert.Equal(t, field, FieldName(ColumnName(field)))
		})
	}
	assert.Equal(t, "name_en", ColumnName("nameEn"))
}

func TestProductPatchApply(t *testing.T) {
	p := validProduct()
	p.SalePrice = Price(80)
	name := "Καθρέπτης"
	zero := 0.0
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	ProductPatch{Name: &name, SalePrice: &zero, Tags: []string{"mirrors"}}.Apply(p, now)

	assert.Equal(t, "Καθρέπτης", p.Name)
	assert.Equal(t, "Vanity", p.NameEn)
	assert.Nil(t, p.SalePrice)
	assert.Equal(t, []string{"mirrors"}, p.Tags)
	assert.Equal(t, now, p.UpdatedAt)
}

func TestCloneIsDeep(t *testing.T) {
	p := validProduct()
	p.SalePrice = Price(50)
	p.Colors = []string{"white"}

	c := p.Clone()
	c.Colors[0] = "black"
	*c.SalePrice = 10
	c.Dimensions[0].Price = 1

	assert.Equal(t, "white", p.Colors[0])
	assert.Equal(t, 50.0, *p.SalePrice)
	assert.Equal(t, 100.0, p.Dimensions[0].Price)
}

func TestShippingCost(t *testing.T) {
	s := DefaultShippingSettings()

	assert.Equal(t, 15.0, s.ShippingCost(100, false))
	assert.Equal(t, 0.0, s.ShippingCost(500, false))
	assert.Equal(t, 30.0, s.ShippingCost(800, true))

	s.EnableFreeShipping = false
	assert.Equal(t, 15.0, s.ShippingCost(800, false))
}

func TestOrderStatus(t *testing.T) {
	assert.True(t, OrderShipped.Valid())
	assert.False(t, OrderStatus("returned").Valid())
}
