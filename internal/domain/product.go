package domain

import (
	"math"
	"time"
)

// Product represents a catalog product
//
// swagger:model
type Product struct {
	// The ID of the product
	//
	// required: true
	// example: 5f0c2c1e-2b8a-4a47-9a43-0d77a0d4c5e1
	ID string `json:"id"`

	// The Greek display name
	//
	// required: true
	// example: Νιπτήρας Ardesia
	Name string `json:"name" validate:"required"`

	// The English display name
	//
	// required: true
	// example: Ardesia Vanity
	NameEn string `json:"nameEn" validate:"required"`

	// URL-unique identifier, immutable after creation
	//
	// required: true
	// pattern: ^[a-z0-9]+(-[a-z0-9]+)*$
	// example: ardesia-vanity
	Slug string `json:"slug" validate:"required,slug"`

	Description   string `json:"description"`
	DescriptionEn string `json:"descriptionEn"`

	// The category slug this product belongs to
	//
	// required: true
	// example: vanities
	Category    string `json:"category" validate:"required"`
	Subcategory string `json:"subcategory,omitempty"`

	// Free-form tags matched by the listing's category filter
	Tags []string `json:"tags"`

	// required: true
	// min: 0
	BasePrice float64 `json:"basePrice" validate:"gte=0"`

	// When set and lower than basePrice the product is on sale
	SalePrice *float64 `json:"salePrice,omitempty" validate:"omitempty,gt=0"`

	Images []ProductImage `json:"images" validate:"dive"`

	// Size variants, at least one is required for the product to be purchasable
	//
	// required: true
	Dimensions []ProductDimension `json:"dimensions" validate:"required,min=1,dive"`

	Materials []string `json:"materials"`
	Colors    []string `json:"colors"`
	Features  []string `json:"features"`

	InStock    bool `json:"inStock"`
	Featured   bool `json:"featured"`
	BestSeller bool `json:"bestSeller"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Products is a collection of Product
type Products []*Product

// ProductImage is one picture of a product
type ProductImage struct {
	ID        string `json:"id"`
	URL       string `json:"url" validate:"required"`
	Alt       string `json:"alt"`
	IsPrimary bool   `json:"isPrimary"`
}

// ProductDimension is a size variant with its own price
type ProductDimension struct {
	ID string `json:"id" validate:"required"`

	// Width, height and depth in centimeters
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
	Depth  float64 `json:"depth" validate:"gte=0"`

	Price float64 `json:"price" validate:"gte=0"`
	SKU   string  `json:"sku"`
}

// Category groups products in the storefront navigation
//
// swagger:model
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	NameEn      string `json:"nameEn" validate:"required"`
	Slug        string `json:"slug" validate:"required,slug"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`

	// Number of products in this category. Derived from the product list when
	// served by the catalog store.
	ProductCount int `json:"productCount"`
}

// Dimension returns the dimension with the given id
func (p *Product) Dimension(id string) (ProductDimension, bool) {
	for _, d := range p.Dimensions {
		if d.ID == id {
			return d, true
		}
	}
	return ProductDimension{}, false
}

// DefaultDimension is the first listed size variant
func (p *Product) DefaultDimension() (ProductDimension, bool) {
	if len(p.Dimensions) == 0 {
		return ProductDimension{}, false
	}
	return p.Dimensions[0], true
}

// PrimaryImage returns the image flagged primary, or the first image
func (p *Product) PrimaryImage() (ProductImage, bool) {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img, true
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0], true
	}
	return ProductImage{}, false
}

// onSale reports whether a usable sale price is set
func (p *Product) onSale() bool {
	return p.SalePrice != nil && *p.SalePrice > 0
}

// PriceFor is the unit price charged for the given size variant: the sale
// price when one is set, otherwise the variant's own price.
func (p *Product) PriceFor(d ProductDimension) float64 {
	if p.onSale() {
		return *p.SalePrice
	}
	return d.Price
}

// EffectivePrice is PriceFor applied to the default dimension. Products with
// no dimensions fall back to the base price.
func (p *Product) EffectivePrice() float64 {
	if p.onSale() {
		return *p.SalePrice
	}
	if d, ok := p.DefaultDimension(); ok {
		return d.Price
	}
	return p.BasePrice
}

// HasDiscount is true when the sale price undercuts the base price
func (p *Product) HasDiscount() bool {
	return p.onSale() && *p.SalePrice < p.BasePrice
}

// DiscountPercent returns the rounded discount shown on the product badge
func (p *Product) DiscountPercent() int {
	if !p.HasDiscount() || p.BasePrice == 0 {
		return 0
	}
	return int(math.Round((1 - *p.SalePrice/p.BasePrice) * 100))
}

// HasTag reports whether the product carries the tag
func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hold snapshots without sharing slices
func (p *Product) Clone() *Product {
	c := *p
	if p.SalePrice != nil {
		sp := *p.SalePrice
		c.SalePrice = &sp
	}
	c.Tags = append([]string(nil), p.Tags...)
	c.Images = append([]ProductImage(nil), p.Images...)
	c.Dimensions = append([]ProductDimension(nil), p.Dimensions...)
	c.Materials = append([]string(nil), p.Materials...)
	c.Colors = append([]string(nil), p.Colors...)
	c.Features = append([]string(nil), p.Features...)
	return &c
}

// Price returns a pointer to v, handy for SalePrice literals
func Price(v float64) *float64 {
	return &v
}
