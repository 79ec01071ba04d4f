package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/go-openapi/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/probagno/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type contextKey string

// ContextKeyBody holds the decoded and validated request body
const ContextKeyBody contextKey = "body"

// HeaderCartID carries the cart a request operates on
const HeaderCartID = "X-Cart-ID"

// Middleware struct holds dependencies for middleware functions
type Middleware struct {
	Logger     hclog.Logger
	Validator  *domain.Validation
	corsConfig *CORSConfig
	duration   *prometheus.HistogramVec
}

// CORSConfig holds configuration for CORS middleware
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	MaxAge           int  // Cache preflight requests
	AllowCredentials bool // Allow credentials like cookies
}

func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", HeaderCartID},
		ExposedHeaders:   []string{HeaderCartID, "X-Request-ID"},
		MaxAge:           86400, // 24 hours
		AllowCredentials: true,
	}
}

// NewMiddleware creates a new Middleware instance. Request durations are
// registered with reg when it is not nil.
func NewMiddleware(logger hclog.Logger, validator *domain.Validation, corsConfig *CORSConfig, reg prometheus.Registerer) *Middleware {
	if corsConfig == nil {
		corsConfig = DefaultCORSConfig()
	}

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "probagno_http_request_duration_seconds",
		Help:    "Duration of HTTP requests by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "code"})
	if reg != nil {
		reg.MustRegister(duration)
	}

	return &Middleware{
		Logger:     logger,
		Validator:  validator,
		corsConfig: corsConfig,
		duration:   duration,
	}
}

func (m *Middleware) CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range m.corsConfig.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				w.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}

		if !allowed {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Access-Control-Allow-Methods", strings.Join(m.corsConfig.AllowedMethods, ","))
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(m.corsConfig.AllowedHeaders, ","))
		if len(m.corsConfig.ExposedHeaders) > 0 {
			w.Header().Set("Access-Control-Expose-Headers", strings.Join(m.corsConfig.ExposedHeaders, ","))
		}

		if m.corsConfig.AllowCredentials {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			if m.corsConfig.MaxAge > 0 {
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(m.corsConfig.MaxAge))
			}
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ContentTypeMiddleware sets the Content-Type header to application/json
func (m *Middleware) ContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs the incoming requests and responses
func (m *Middleware) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()

		m.Logger.Info("Incoming request",
			"method", r.Method,
			"url", r.URL.Path,
			"request_id", requestID,
		)

		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r)

		m.Logger.Info("Completed request",
			"method", r.Method,
			"url", r.URL.Path,
			"request_id", requestID,
			"duration", time.Since(start),
		)
	})
}

// MetricsMiddleware observes request durations labelled with the matched
// route template
func (m *Middleware) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		observer := m.duration.MustCurryWith(prometheus.Labels{"route": route})
		promhttp.InstrumentHandlerDuration(observer, next).ServeHTTP(w, r)
	})
}

// ValidationMiddleware decodes the request body into a new T, validates it
// and adds it to the context
func ValidationMiddleware[T any](m *Middleware) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := new(T)
			if err := json.NewDecoder(r.Body).Decode(body); err != nil {
				m.Logger.Error("Error decoding request body", "url", r.URL.Path, "error", err)
				apierrors.ServeError(w, r, apierrors.New(http.StatusBadRequest, "Invalid request body"))
				return
			}

			if errs := m.Validator.Validate(body); len(errs) > 0 {
				writeValidationErrors(w, errs)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyBody, body)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bodyFrom returns the body stored by ValidationMiddleware
func bodyFrom[T any](r *http.Request) (*T, bool) {
	body, ok := r.Context().Value(ContextKeyBody).(*T)
	return body, ok
}
