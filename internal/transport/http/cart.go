package http

import (
	"net/http"

	apierrors "github.com/go-openapi/errors"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/probagno/internal/domain"
	"github.com/kahvecikaan/probagno/internal/store"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	carts    CartRegistry
	catalog  Catalog
	settings Settings
	logger   hclog.Logger
}

func NewCartHandler(carts CartRegistry, catalog Catalog, settings Settings, log hclog.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		catalog:  catalog,
		settings: settings,
		logger:   log,
	}
}

// CartSummary is the state of a cart with its shipping estimate
//
// swagger:model
type CartSummary struct {
	ID        string            `json:"cartId"`
	Items     []domain.CartItem `json:"items"`
	ItemCount int               `json:"itemCount"`
	IsOpen    bool              `json:"isOpen"`

	Total      decimal.Decimal `json:"total"`
	Shipping   decimal.Decimal `json:"shipping"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// AddItemRequest adds a product dimension to the cart. An empty dimension
// selects the product's first dimension; a quantity below one adds one.
//
// swagger:model
type AddItemRequest struct {
	ProductSlug string `json:"productSlug" validate:"required"`
	DimensionID string `json:"dimensionId"`
	Quantity    int    `json:"quantity"`
}

// UpdateQuantityRequest sets the quantity of a cart line. Zero or less
// removes it.
//
// swagger:model
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// cartID returns the id sent by the client, or a new one when the header is
// missing or malformed
func cartID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(HeaderCartID)
	known := store.ValidID(id)
	if !known {
		id = store.NewID()
	}
	w.Header().Set(HeaderCartID, id)
	return id, known
}

// cart resolves the cart of the request for a change, registering it on
// first use
func (h *CartHandler) cart(w http.ResponseWriter, r *http.Request) (string, *store.Cart) {
	id, _ := cartID(w, r)
	return id, h.carts.Get(id)
}

// view resolves the cart of the request without registering it. An unknown
// cart reads as an empty detached one.
func (h *CartHandler) view(w http.ResponseWriter, r *http.Request) (string, *store.Cart) {
	id, known := cartID(w, r)
	if known {
		if cart, ok := h.carts.Lookup(id); ok {
			return id, cart
		}
	}
	return id, store.NewCart(store.NewMemoryPersister[[]domain.CartItem](nil), h.logger)
}

func (h *CartHandler) writeSummary(w http.ResponseWriter, r *http.Request, id string, cart *store.Cart) {
	total := cart.Total()
	items := cart.Items()

	shipping := decimal.Zero
	if len(items) > 0 {
		express := r.URL.Query().Get("shipping") == "express"
		cost := h.settings.Shipping(r.Context()).ShippingCost(total.InexactFloat64(), express)
		shipping = decimal.NewFromFloat(cost)
	}

	writeJSON(w, http.StatusOK, CartSummary{
		ID:         id,
		Items:      nonNil(items),
		ItemCount:  cart.ItemCount(),
		IsOpen:     cart.IsOpen(),
		Total:      total,
		Shipping:   shipping,
		GrandTotal: total.Add(shipping),
	})
}

// GetCart handles GET /cart
//
// swagger:route GET /cart cart getCart
//
// Returns the cart identified by the X-Cart-ID header. Pass
// shipping=express for the express shipping estimate.
//
// Responses:
//
//	200: cartResponse
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	id, cart := h.view(w, r)
	h.writeSummary(w, r, id, cart)
}

// AddItem handles POST /cart/items
//
// swagger:route POST /cart/items cart addCartItem
//
// Adds a product dimension to the cart and opens it.
//
// Responses:
//
//	200: cartResponse
//	400: errorResponse
//	404: errorResponse
//	422: validationErrorResponse
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	req, ok := bodyFrom[AddItemRequest](r)
	if !ok {
		apierrors.ServeError(w, r, apierrors.New(http.StatusBadRequest, "Invalid cart item"))
		return
	}

	product, err := h.catalog.GetProductBySlug(r.Context(), req.ProductSlug)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var dimension domain.ProductDimension
	if req.DimensionID == "" {
		dimension, ok = product.DefaultDimension()
	} else {
		dimension, ok = product.Dimension(req.DimensionID)
	}
	if !ok {
		writeError(w, r, domain.ErrDimensionNotFound)
		return
	}

	id, cart := h.cart(w, r)
	cart.AddItem(product, dimension, req.Quantity)
	h.logger.Debug("Added cart item", "cart", id, "product", product.Slug, "dimension", dimension.ID)

	h.writeSummary(w, r, id, cart)
}

// UpdateQuantity handles PATCH /cart/items/{productId}/{dimensionId}
//
// swagger:route PATCH /cart/items/{productId}/{dimensionId} cart updateCartItem
//
// Sets the quantity of a cart line. A quantity of zero or less removes it.
//
// Responses:
//
//	200: cartResponse
//	422: validationErrorResponse
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	req, ok := bodyFrom[UpdateQuantityRequest](r)
	if !ok {
		apierrors.ServeError(w, r, apierrors.New(http.StatusBadRequest, "Invalid quantity"))
		return
	}

	vars := mux.Vars(r)
	id, cart := h.view(w, r)
	cart.UpdateQuantity(vars["productId"], vars["dimensionId"], *req.Quantity)

	h.writeSummary(w, r, id, cart)
}

// RemoveItem handles DELETE /cart/items/{productId}/{dimensionId}
//
// swagger:route DELETE /cart/items/{productId}/{dimensionId} cart removeCartItem
//
// Removes a cart line.
//
// Responses:
//
//	200: cartResponse
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, cart := h.view(w, r)
	cart.RemoveItem(vars["productId"], vars["dimensionId"])

	h.writeSummary(w, r, id, cart)
}

// ClearCart handles DELETE /cart
//
// swagger:route DELETE /cart cart clearCart
//
// Removes every line from the cart.
//
// Responses:
//
//	200: cartResponse
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	id, cart := h.view(w, r)
	cart.ClearCart()

	h.writeSummary(w, r, id, cart)
}

// OpenCart handles POST /cart/open
func (h *CartHandler) OpenCart(w http.ResponseWriter, r *http.Request) {
	id, cart := h.cart(w, r)
	cart.Open()
	h.writeSummary(w, r, id, cart)
}

// CloseCart handles POST /cart/close
func (h *CartHandler) CloseCart(w http.ResponseWriter, r *http.Request) {
	id, cart := h.view(w, r)
	cart.Close()
	h.writeSummary(w, r, id, cart)
}

// ToggleCart handles POST /cart/toggle
func (h *CartHandler) ToggleCart(w http.ResponseWriter, r *http.Request) {
	id, cart := h.cart(w, r)
	cart.Toggle()
	h.writeSummary(w, r, id, cart)
}
