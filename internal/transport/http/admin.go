package http

import (
	"net/http"

	apierrors "github.com/go-openapi/errors"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/probagno/internal/domain"
)

type AdminHandler struct {
	catalog Catalog
	view    CatalogView
	logger  hclog.Logger
}

func NewAdminHandler(catalog Catalog, view CatalogView, log hclog.Logger) *AdminHandler {
	return &AdminHandler{
		catalog: catalog,
		view:    view,
		logger:  log,
	}
}

// Dashboard handles GET /admin/dashboard
//
// swagger:route GET /admin/dashboard admin dashboard
//
// Returns the catalog statistics for the admin overview.
//
// Responses:
//
//	200: dashboardResponse
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard := h.view.Dashboard()
	dashboard.RecentProducts = nonNil(dashboard.RecentProducts)
	writeJSON(w, http.StatusOK, dashboard)
}

// CreateProduct handles POST /admin/products
//
// swagger:route POST /admin/products admin createProduct
//
// Adds a new product.
//
// Responses:
//
//	201: productResponse
//	409: errorResponse
//	422: validationErrorResponse
//	500: errorResponse
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := bodyFrom[domain.Product](r)
	if !ok {
		apierrors.ServeError(w, r, apierrors.New(http.StatusBadRequest, "Invalid product data"))
		return
	}

	created, err := h.catalog.CreateProduct(r.Context(), product)
	if err != nil {
		h.logger.Error("Error creating product", "slug", product.Slug, "error", err)
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// UpdateProduct handles PATCH /admin/products/{id}
//
// swagger:route PATCH /admin/products/{id} admin updateProduct
//
// Applies a partial update to a product. The slug cannot be changed.
//
// Responses:
//
//	200: productResponse
//	400: errorResponse
//	404: errorResponse
//	422: validationErrorResponse
//	500: errorResponse
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	patch, ok := bodyFrom[domain.ProductPatch](r)
	if !ok {
		apierrors.ServeError(w, r, apierrors.New(http.StatusBadRequest, "Invalid product patch"))
		return
	}

	id := mux.Vars(r)["id"]
	updated, err := h.catalog.UpdateProduct(r.Context(), id, *patch)
	if err != nil {
		h.logger.Error("Error updating product", "id", id, "error", err)
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteProduct handles DELETE /admin/products/{id}
//
// swagger:route DELETE /admin/products/{id} admin deleteProduct
//
// Deletes a product.
//
// Responses:
//
//	204: noContentResponse
//	404: errorResponse
//	500: errorResponse
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		h.logger.Error("Error deleting product", "id", id, "error", err)
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateCategory handles POST /admin/categories
//
// swagger:route POST /admin/categories admin createCategory
//
// Adds a new category.
//
// Responses:
//
//	201: categoryResponse
//	409: errorResponse
//	422: validationErrorResponse
//	500: errorResponse
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := bodyFrom[domain.Category](r)
	if !ok {
		apierrors.ServeError(w, r, apierrors.New(http.StatusBadRequest, "Invalid category data"))
		return
	}

	created, err := h.catalog.CreateCategory(r.Context(), category)
	if err != nil {
		h.logger.Error("Error creating category", "slug", category.Slug, "error", err)
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// UpdateCategory handles PATCH /admin/categories/{id}
//
// swagger:route PATCH /admin/categories/{id} admin updateCategory
//
// Applies a partial update to a category.
//
// Responses:
//
//	200: categoryResponse
//	400: errorResponse
//	404: errorResponse
//	500: errorResponse
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	patch, ok := bodyFrom[domain.CategoryPatch](r)
	if !ok {
		apierrors.ServeError(w, r, apierrors.New(http.StatusBadRequest, "Invalid category patch"))
		return
	}

	id := mux.Vars(r)["id"]
	updated, err := h.catalog.UpdateCategory(r.Context(), id, *patch)
	if err != nil {
		h.logger.Error("Error updating category", "id", id, "error", err)
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteCategory handles DELETE /admin/categories/{id}
//
// swagger:route DELETE /admin/categories/{id} admin deleteCategory
//
// Deletes a category.
//
// Responses:
//
//	204: noContentResponse
//	404: errorResponse
//	500: errorResponse
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		h.logger.Error("Error deleting category", "id", id, "error", err)
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Seed handles POST /admin/seed
//
// swagger:route POST /admin/seed admin seed
//
// Upserts the sample catalog. Records that fail are reported and the rest
// are still written.
//
// Responses:
//
//	204: noContentResponse
//	500: errorResponse
func (h *AdminHandler) Seed(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Seed(r.Context()); err != nil {
		apierrors.ServeError(w, r, apierrors.New(http.StatusInternalServerError, "%s", err.Error()))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
