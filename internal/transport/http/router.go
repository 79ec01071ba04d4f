package http

import (
	"net/http"
	"path/filepath"
	"runtime"

	"github.com/go-openapi/runtime/middleware"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/probagno/internal/domain"
	websocketTransport "github.com/kahvecikaan/probagno/internal/transport/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups the resource handlers served by the router
type Handlers struct {
	Products  *ProductHandler
	Cart      *CartHandler
	Settings  *SettingsHandler
	Admin     *AdminHandler
	WebSocket *websocketTransport.Handler

	// Metrics serves /metrics, promhttp.Handler() when nil
	Metrics http.Handler
}

func NewRouter(h Handlers, mw *Middleware) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(mw.LoggingMiddleware)
	router.Use(mw.MetricsMiddleware)
	router.Use(mw.ContentTypeMiddleware)

	// Storefront
	router.HandleFunc("/products", h.Products.ListProducts).Methods(http.MethodGet)
	router.HandleFunc("/products/{slug}", h.Products.GetProduct).Methods(http.MethodGet)
	router.HandleFunc("/categories", h.Products.ListCategories).Methods(http.MethodGet)
	router.HandleFunc("/home", h.Products.Home).Methods(http.MethodGet)
	router.HandleFunc("/ws", h.WebSocket.HandleWebSocket).Methods(http.MethodGet)

	// Settings
	router.HandleFunc("/settings/{key}", h.Settings.GetSettings).Methods(http.MethodGet)
	router.HandleFunc("/settings/{key}", h.Settings.PutSettings).Methods(http.MethodPut)

	// Cart, identified by the X-Cart-ID header
	cart := router.PathPrefix("/cart").Subrouter()
	cart.HandleFunc("", h.Cart.GetCart).Methods(http.MethodGet)
	cart.HandleFunc("", h.Cart.ClearCart).Methods(http.MethodDelete)
	cart.Handle("/items", withBody[AddItemRequest](mw, h.Cart.AddItem)).Methods(http.MethodPost)
	cart.Handle("/items/{productId}/{dimensionId}", withBody[UpdateQuantityRequest](mw, h.Cart.UpdateQuantity)).Methods(http.MethodPatch)
	cart.HandleFunc("/items/{productId}/{dimensionId}", h.Cart.RemoveItem).Methods(http.MethodDelete)
	cart.HandleFunc("/open", h.Cart.OpenCart).Methods(http.MethodPost)
	cart.HandleFunc("/close", h.Cart.CloseCart).Methods(http.MethodPost)
	cart.HandleFunc("/toggle", h.Cart.ToggleCart).Methods(http.MethodPost)

	// Admin
	admin := router.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/dashboard", h.Admin.Dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/seed", h.Admin.Seed).Methods(http.MethodPost)
	admin.Handle("/products", withBody[domain.Product](mw, h.Admin.CreateProduct)).Methods(http.MethodPost)
	admin.Handle("/products/{id}", withBody[domain.ProductPatch](mw, h.Admin.UpdateProduct)).Methods(http.MethodPatch)
	admin.HandleFunc("/products/{id}", h.Admin.DeleteProduct).Methods(http.MethodDelete)
	admin.Handle("/categories", withBody[domain.Category](mw, h.Admin.CreateCategory)).Methods(http.MethodPost)
	admin.Handle("/categories/{id}", withBody[domain.CategoryPatch](mw, h.Admin.UpdateCategory)).Methods(http.MethodPatch)
	admin.HandleFunc("/categories/{id}", h.Admin.DeleteCategory).Methods(http.MethodDelete)

	metrics := h.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	router.Handle("/metrics", metrics).Methods(http.MethodGet)

	// swagger.yaml lives at the module root, three levels above this file
	_, filename, _, _ := runtime.Caller(0)
	rootDir := filepath.Join(filepath.Dir(filename), "..", "..", "..")
	swaggerFilePath := filepath.Join(rootDir, "swagger.yaml")

	router.HandleFunc("/swagger.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		http.ServeFile(w, r, swaggerFilePath)
	}).Methods(http.MethodGet)

	swaggerOpts := middleware.RedocOpts{SpecURL: "/swagger.yaml"}
	router.Handle("/docs", middleware.Redoc(swaggerOpts, nil)).Methods(http.MethodGet)

	return router
}

// Handler wraps the router with CORS, response compression and panic
// recovery. CORS runs outside the router so preflight requests are answered
// for routes that do not accept OPTIONS.
func Handler(router *mux.Router, mw *Middleware) http.Handler {
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(mw.Logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true})),
		handlers.PrintRecoveryStack(true),
	)
	return recovery(mw.CORSMiddleware(handlers.CompressHandler(router)))
}

// withBody decodes and validates a T before calling fn
func withBody[T any](mw *Middleware, fn http.HandlerFunc) http.Handler {
	return ValidationMiddleware[T](mw)(fn)
}

// NewMetricsHandler serves the metrics gathered by g
func NewMetricsHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
