package repository

import (
	"time"

	"github.com/kahvecikaan/probagno/internal/domain"
)

// productRow is the storage shape of a product. Column names follow the
// snake_case form of the JSON field names.
type productRow struct {
	ID            string                    `gorm:"column:id;primaryKey;type:uuid"`
	Name          string                    `gorm:"column:name;not null"`
	NameEn        string                    `gorm:"column:name_en;not null"`
	Slug          string                    `gorm:"column:slug;uniqueIndex;not null"`
	Description   string                    `gorm:"column:description"`
	DescriptionEn string                    `gorm:"column:description_en"`
	Category      string                    `gorm:"column:category;index"`
	Subcategory   *string                   `gorm:"column:subcategory"`
	Tags          []string                  `gorm:"column:tags;type:jsonb;serializer:json"`
	BasePrice     float64                   `gorm:"column:base_price"`
	SalePrice     *float64                  `gorm:"column:sale_price"`
	Images        []domain.ProductImage     `gorm:"column:images;type:jsonb;serializer:json"`
	Dimensions    []domain.ProductDimension `gorm:"column:dimensions;type:jsonb;serializer:json"`
	Materials     []string                  `gorm:"column:materials;type:jsonb;serializer:json"`
	Colors        []string                  `gorm:"column:colors;type:jsonb;serializer:json"`
	Features      []string                  `gorm:"column:features;type:jsonb;serializer:json"`
	InStock       bool                      `gorm:"column:in_stock"`
	Featured      bool                      `gorm:"column:featured"`
	BestSeller    bool                      `gorm:"column:best_seller"`
	CreatedAt     time.Time                 `gorm:"column:created_at"`
	UpdatedAt     time.Time                 `gorm:"column:updated_at"`
}

func (productRow) TableName() string { return string(domain.KindProducts) }

type categoryRow struct {
	ID           string    `gorm:"column:id;primaryKey;type:uuid"`
	Name         string    `gorm:"column:name;not null"`
	NameEn       string    `gorm:"column:name_en;not null"`
	Slug         string    `gorm:"column:slug;uniqueIndex;not null"`
	Description  *string   `gorm:"column:description"`
	Image        *string   `gorm:"column:image"`
	ProductCount int       `gorm:"column:product_count"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (categoryRow) TableName() string { return string(domain.KindCategories) }

type settingRow struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (settingRow) TableName() string { return string(domain.KindSettings) }

func toProductRow(p *domain.Product) productRow {
	row := productRow{
		ID:            p.ID,
		Name:          p.Name,
		NameEn:        p.NameEn,
		Slug:          p.Slug,
		Description:   p.Description,
		DescriptionEn: p.DescriptionEn,
		Category:      p.Category,
		Tags:          nonNil(p.Tags),
		BasePrice:     p.BasePrice,
		Images:        p.Images,
		Dimensions:    p.Dimensions,
		Materials:     nonNil(p.Materials),
		Colors:        nonNil(p.Colors),
		Features:      nonNil(p.Features),
		InStock:       p.InStock,
		Featured:      p.Featured,
		BestSeller:    p.BestSeller,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if row.Images == nil {
		row.Images = []domain.ProductImage{}
	}
	if row.Dimensions == nil {
		row.Dimensions = []domain.ProductDimension{}
	}
	if p.Subcategory != "" {
		sub := p.Subcategory
		row.Subcategory = &sub
	}
	if p.SalePrice != nil && *p.SalePrice > 0 {
		row.SalePrice = domain.Price(*p.SalePrice)
	}
	return row
}

func (row productRow) toDomain() *domain.Product {
	p := &domain.Product{
		ID:            row.ID,
		Name:          row.Name,
		NameEn:        row.NameEn,
		Slug:          row.Slug,
		Description:   row.Description,
		DescriptionEn: row.DescriptionEn,
		Category:      row.Category,
		Tags:          nonNil(row.Tags),
		BasePrice:     row.BasePrice,
		Images:        row.Images,
		Dimensions:    row.Dimensions,
		Materials:     nonNil(row.Materials),
		Colors:        nonNil(row.Colors),
		Features:      nonNil(row.Features),
		InStock:       row.InStock,
		Featured:      row.Featured,
		BestSeller:    row.BestSeller,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.Subcategory != nil {
		p.Subcategory = *row.Subcategory
	}
	if row.SalePrice != nil && *row.SalePrice > 0 {
		p.SalePrice = domain.Price(*row.SalePrice)
	}
	return p
}

func toCategoryRow(c *domain.Category) categoryRow {
	row := categoryRow{
		ID:           c.ID,
		Name:         c.Name,
		NameEn:       c.NameEn,
		Slug:         c.Slug,
		ProductCount: c.ProductCount,
	}
	if c.Description != "" {
		d := c.Description
		row.Description = &d
	}
	if c.Image != "" {
		img := c.Image
		row.Image = &img
	}
	return row
}

func (row categoryRow) toDomain() *domain.Category {
	c := &domain.Category{
		ID:           row.ID,
		Name:         row.Name,
		NameEn:       row.NameEn,
		Slug:         row.Slug,
		ProductCount: row.ProductCount,
	}
	if row.Description != nil {
		c.Description = *row.Description
	}
	if row.Image != nil {
		c.Image = *row.Image
	}
	return c
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
