package domain

import (
	"time"

	"github.com/go-openapi/swag"
)

// ColumnName maps a JSON field name to its storage column (nameEn -> name_en)
func ColumnName(field string) string {
	return swag.ToFileName(field)
}

// FieldName maps a storage column back to its JSON field name (name_en -> nameEn)
func FieldName(column string) string {
	return swag.ToJSONName(column)
}

// ProductPatch is a partial product update. Nil fields are left untouched.
// The slug cannot be patched.
//
// swagger:model
type ProductPatch struct {
	Name          *string `json:"name,omitempty"`
	NameEn        *string `json:"nameEn,omitempty"`
	Description   *string `json:"description,omitempty"`
	DescriptionEn *string `json:"descriptionEn,omitempty"`
	Category      *string `json:"category,omitempty"`
	// An empty subcategory clears it
	Subcategory *string  `json:"subcategory,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	BasePrice   *float64 `json:"basePrice,omitempty"`
	// A sale price of zero clears it
	SalePrice  *float64           `json:"salePrice,omitempty"`
	Images     []ProductImage     `json:"images,omitempty"`
	Dimensions []ProductDimension `json:"dimensions,omitempty"`
	Materials  []string           `json:"materials,omitempty"`
	Colors     []string           `json:"colors,omitempty"`
	Features   []string           `json:"features,omitempty"`
	InStock    *bool              `json:"inStock,omitempty"`
	Featured   *bool              `json:"featured,omitempty"`
	BestSeller *bool              `json:"bestSeller,omitempty"`
}

// Columns returns the set fields keyed by storage column name
func (p ProductPatch) Columns() map[string]any {
	cols := map[string]any{}
	set := func(field string, v any) {
		cols[ColumnName(field)] = v
	}

	if p.Name != nil {
		set("name", *p.Name)
	}
	if p.NameEn != nil {
		set("nameEn", *p.NameEn)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.DescriptionEn != nil {
		set("descriptionEn", *p.DescriptionEn)
	}
	if p.Category != nil {
		set("category", *p.Category)
	}
	if p.Subcategory != nil {
		if *p.Subcategory == "" {
			set("subcategory", nil)
		} else {
			set("subcategory", *p.Subcategory)
		}
	}
	if p.Tags != nil {
		set("tags", p.Tags)
	}
	if p.BasePrice != nil {
		set("basePrice", *p.BasePrice)
	}
	if p.SalePrice != nil {
		if *p.SalePrice <= 0 {
			set("salePrice", nil)
		} else {
			set("salePrice", *p.SalePrice)
		}
	}
	if p.Images != nil {
		set("images", p.Images)
	}
	if p.Dimensions != nil {
		set("dimensions", p.Dimensions)
	}
	if p.Materials != nil {
		set("materials", p.Materials)
	}
	if p.Colors != nil {
		set("colors", p.Colors)
	}
	if p.Features != nil {
		set("features", p.Features)
	}
	if p.InStock != nil {
		set("inStock", *p.InStock)
	}
	if p.Featured != nil {
		set("featured", *p.Featured)
	}
	if p.BestSeller != nil {
		set("bestSeller", *p.BestSeller)
	}

	return cols
}

// IsEmpty is true when no field is set
func (p ProductPatch) IsEmpty() bool {
	return len(p.Columns()) == 0
}

// Apply writes the set fields onto product and bumps UpdatedAt
func (p ProductPatch) Apply(product *Product, now time.Time) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.NameEn != nil {
		product.NameEn = *p.NameEn
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.DescriptionEn != nil {
		product.DescriptionEn = *p.DescriptionEn
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Subcategory != nil {
		product.Subcategory = *p.Subcategory
	}
	if p.Tags != nil {
		product.Tags = append([]string(nil), p.Tags...)
	}
	if p.BasePrice != nil {
		product.BasePrice = *p.BasePrice
	}
	if p.SalePrice != nil {
		if *p.SalePrice <= 0 {
			product.SalePrice = nil
		} else {
			product.SalePrice = Price(*p.SalePrice)
		}
	}
	if p.Images != nil {
		product.Images = append([]ProductImage(nil), p.Images...)
	}
	if p.Dimensions != nil {
		product.Dimensions = append([]ProductDimension(nil), p.Dimensions...)
	}
	if p.Materials != nil {
		product.Materials = append([]string(nil), p.Materials...)
	}
	if p.Colors != nil {
		product.Colors = append([]string(nil), p.Colors...)
	}
	if p.Features != nil {
		product.Features = append([]string(nil), p.Features...)
	}
	if p.InStock != nil {
		product.InStock = *p.InStock
	}
	if p.Featured != nil {
		product.Featured = *p.Featured
	}
	if p.BestSeller != nil {
		product.BestSeller = *p.BestSeller
	}
	product.UpdatedAt = now
}

// CategoryPatch is a partial category update. Nil fields are left untouched.
//
// swagger:model
type CategoryPatch struct {
	Name         *string `json:"name,omitempty"`
	NameEn       *string `json:"nameEn,omitempty"`
	Description  *string `json:"description,omitempty"`
	Image        *string `json:"image,omitempty"`
	ProductCount *int    `json:"productCount,omitempty"`
}

// Columns returns the set fields keyed by storage column name
func (p CategoryPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols[ColumnName("name")] = *p.Name
	}
	if p.NameEn != nil {
		cols[ColumnName("nameEn")] = *p.NameEn
	}
	if p.Description != nil {
		cols[ColumnName("description")] = *p.Description
	}
	if p.Image != nil {
		cols[ColumnName("image")] = *p.Image
	}
	if p.ProductCount != nil {
		cols[ColumnName("productCount")] = *p.ProductCount
	}
	return cols
}

// IsEmpty is true when no field is set
func (p CategoryPatch) IsEmpty() bool {
	return len(p.Columns()) == 0
}

// Apply writes the set fields onto category
func (p CategoryPatch) Apply(category *Category) {
	if p.Name != nil {
		category.Name = *p.Name
	}
	if p.NameEn != nil {
		category.NameEn = *p.NameEn
	}
	if p.Description != nil {
		category.Description = *p.Description
	}
	if p.Image != nil {
		category.Image = *p.Image
	}
	if p.ProductCount != nil {
		category.ProductCount = *p.ProductCount
	}
}
