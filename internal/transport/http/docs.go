// Package classification of Probagno API
//
// # Documentation for the Probagno storefront API
//
// Schemes: http
// BasePath: /
// Version: 1.0.0
//
// Consumes:
// - application/json
//
// Produces:
// - application/json
//
// swagger:meta
package http

import (
	"github.com/kahvecikaan/probagno/internal/domain"
	"github.com/kahvecikaan/probagno/internal/store"
)

// NOTE: Types defined here are purely for documentation purposes
// These types are not used by any of the handlers

// Generic error message with its code
// swagger:response errorResponse
type errorResponseWrapper struct {
	// Description of the error
	// in: body
	Body ErrorResponse
}

// Validation errors defined as an array of strings
// swagger:response validationErrorResponse
type validationErrorResponseWrapper struct {
	// Collection of the errors
	// in: body
	Body ValidationError
}

// A filtered page of products
// swagger:response productListResponse
type productListResponseWrapper struct {
	// in: body
	Body ProductList
}

// A product with related products
// swagger:response productDetailResponse
type productDetailResponseWrapper struct {
	// in: body
	Body ProductDetail
}

// Data structure representing a single product
// swagger:response productResponse
type productResponseWrapper struct {
	// A single product
	// in: body
	Body domain.Product
}

// All categories with their product counts
// swagger:response categoriesResponse
type categoriesResponseWrapper struct {
	// in: body
	Body []domain.Category
}

// A single category
// swagger:response categoryResponse
type categoryResponseWrapper struct {
	// in: body
	Body domain.Category
}

// Storefront landing content
// swagger:response homeResponse
type homeResponseWrapper struct {
	// in: body
	Body Home
}

// The state of a cart
// swagger:response cartResponse
type cartResponseWrapper struct {
	// in: body
	Body CartSummary
}

// A settings document
// swagger:response settingsResponse
type settingsResponseWrapper struct {
	// One of the store, shipping or notifications documents
	// in: body
	Body interface{}
}

// Catalog statistics
// swagger:response dashboardResponse
type dashboardResponseWrapper struct {
	// in: body
	Body store.Dashboard
}

// No content response for endpoints that return 204
// swagger:response noContentResponse
type noContentResponseWrapper struct{}

// swagger:parameters listProducts
type listProductsParamsWrapper struct {
	// Matched against the Greek and English names and the description
	// in: query
	Q string `json:"q"`
	// Tags to match, repeatable. "all" disables the filter.
	// in: query
	Category []string `json:"category"`
	// in: query
	Color []string `json:"color"`
	// in: query
	Material []string `json:"material"`
	// in: query
	// minimum: 0
	MinPrice float64 `json:"minPrice"`
	// Inclusive upper bound, omitted for no upper bound
	// in: query
	// minimum: 0
	MaxPrice *float64 `json:"maxPrice"`
	// in: query
	// enum: featured,price-asc,price-desc,name,newest
	Sort string `json:"sort"`
}

// swagger:parameters getProduct
type productSlugParamsWrapper struct {
	// in: path
	// required: true
	Slug string `json:"slug"`
}

// swagger:parameters updateProduct deleteProduct updateCategory deleteCategory
type idParamsWrapper struct {
	// in: path
	// required: true
	ID string `json:"id"`
}

// swagger:parameters createProduct
type productBodyParamsWrapper struct {
	// in: body
	// required: true
	Body domain.Product
}

// swagger:parameters updateProduct
type productPatchParamsWrapper struct {
	// in: body
	// required: true
	Body domain.ProductPatch
}

// swagger:parameters createCategory
type categoryBodyParamsWrapper struct {
	// in: body
	// required: true
	Body domain.Category
}

// swagger:parameters updateCategory
type categoryPatchParamsWrapper struct {
	// in: body
	// required: true
	Body domain.CategoryPatch
}

// swagger:parameters getSettings putSettings
type settingsKeyParamsWrapper struct {
	// in: path
	// required: true
	// enum: store,shipping,notifications
	Key string `json:"key"`
}

// swagger:parameters getCart addCartItem updateCartItem removeCartItem clearCart
type cartIDParamsWrapper struct {
	// Issued by the first cart response when missing
	// in: header
	CartID string `json:"X-Cart-ID"`
}

// swagger:parameters addCartItem
type addItemParamsWrapper struct {
	// in: body
	// required: true
	Body AddItemRequest
}

// swagger:parameters updateCartItem
type updateQuantityParamsWrapper struct {
	// in: body
	// required: true
	Body UpdateQuantityRequest
}

// ErrorResponse defines the structure for API error responses
//
// swagger:model
type ErrorResponse struct {
	Code int32 `json:"code"`

	// The error message
	//
	// required: true
	Message string `json:"message"`
}

// ValidationError defines the structure for API validation error responses
//
// swagger:model
type ValidationError struct {
	// The validation errors
	//
	// required: true
	Messages []string `json:"messages"`
}
