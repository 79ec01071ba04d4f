package http

import (
	"net/http"
	"net/url"
	"strconv"

	apierrors "github.com/go-openapi/errors"
	"github.com/go-openapi/validate"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/probagno/internal/domain"
	"github.com/kahvecikaan/probagno/internal/filter"
	"github.com/kahvecikaan/probagno/internal/store"
)

type ProductHandler struct {
	catalog Catalog
	view    CatalogView
	logger  hclog.Logger
}

func NewProductHandler(catalog Catalog, view CatalogView, log hclog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		view:    view,
		logger:  log,
	}
}

// ProductList is a filtered page of the catalog
type ProductList struct {
	Products domain.Products `json:"products"`
	// Upper bound of the price slider, from the unfiltered catalog
	MaxPrice float64 `json:"maxPrice"`
	Total    int     `json:"total"`
}

// ProductDetail is a product with its pricing summary and related products
type ProductDetail struct {
	Product         *domain.Product `json:"product"`
	Price           float64         `json:"price"`
	HasDiscount     bool            `json:"hasDiscount"`
	DiscountPercent int             `json:"discountPercent"`
	Related         domain.Products `json:"related"`
}

// Home is the storefront landing content
type Home struct {
	Featured    domain.Products    `json:"featured"`
	BestSellers domain.Products    `json:"bestSellers"`
	Categories  []*domain.Category `json:"categories"`
}

var sortValues = func() []string {
	values := make([]string, len(filter.SortKeys))
	for i, k := range filter.SortKeys {
		values[i] = string(k)
	}
	return values
}()

// parseCriteria reads the listing query parameters
func parseCriteria(q url.Values) (filter.Criteria, error) {
	var errs []error

	c := filter.Criteria{
		Search:     q.Get("q"),
		Categories: q["category"],
		Colors:     q["color"],
		Materials:  q["material"],
	}

	if raw := q.Get("sort"); raw != "" {
		if verr := validate.Enum("sort", "query", raw, sortValues); verr != nil {
			errs = append(errs, verr)
		}
	}
	c.Sort, _ = filter.ParseSort(q.Get("sort"))

	if v, ok, err := priceParam(q, "minPrice"); err != nil {
		errs = append(errs, err)
	} else if ok {
		c.Price.Min = v
	}
	if v, ok, err := priceParam(q, "maxPrice"); err != nil {
		errs = append(errs, err)
	} else if ok {
		c.Price.Max = &v
	}

	if len(errs) > 0 {
		return c, apierrors.CompositeValidationError(errs...)
	}
	return c, nil
}

// priceParam reads an optional non-negative price. ok is false when the
// parameter is absent.
func priceParam(q url.Values, name string) (v float64, ok bool, err error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, false, nil
	}

	v, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, apierrors.InvalidType(name, "query", "number", raw)
	}
	if verr := validate.Minimum(name, "query", v, 0, false); verr != nil {
		return 0, false, verr
	}
	return v, true, nil
}

// ListProducts handles GET /products
//
// swagger:route GET /products products listProducts
//
// Returns the products matching the listing filters.
//
// Responses:
//
//	200: productListResponse
//	422: errorResponse
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r.URL.Query())
	if err != nil {
		apierrors.ServeError(w, r, err)
		return
	}

	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		// the catalog renders empty until the repository recovers
		h.logger.Error("Error getting products", "error", err)
	}

	result := filter.Apply(products, criteria)
	writeJSON(w, http.StatusOK, ProductList{
		Products: nonNil(result),
		MaxPrice: filter.MaxPrice(products),
		Total:    len(result),
	})
}

// GetProduct handles GET /products/{slug}
//
// swagger:route GET /products/{slug} products getProduct
//
// Returns a product by slug together with related products.
//
// Responses:
//
//	200: productDetailResponse
//	404: errorResponse
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	product, err := h.catalog.GetProductBySlug(r.Context(), slug)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ProductDetail{
		Product:         product,
		Price:           product.EffectivePrice(),
		HasDiscount:     product.HasDiscount(),
		DiscountPercent: product.DiscountPercent(),
		Related:         nonNil(h.view.Related(product, store.DefaultRelatedLimit)),
	})
}

// ListCategories handles GET /categories
//
// swagger:route GET /categories categories listCategories
//
// Returns the categories with their product counts.
//
// Responses:
//
//	200: categoriesResponse
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(h.view.Categories()))
}

// Home handles GET /home
//
// swagger:route GET /home products home
//
// Returns the featured products, the best sellers and the categories.
//
// Responses:
//
//	200: homeResponse
func (h *ProductHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Home{
		Featured:    nonNil(h.view.Featured()),
		BestSellers: nonNil(h.view.BestSellers()),
		Categories:  nonNil(h.view.Categories()),
	})
}
