package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Catalog is everything the storefront routes need.
type Catalog interface {
	CategoryService
	ProductService
	SlideService
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Check(ctx context.Context) error
}

type RouterConfig struct {
	Catalog            Catalog
	Health             HealthChecker
	Logger             zerolog.Logger
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	UploadsDir         string
}

func NewRouter(cfg RouterConfig) http.Handler {
	categoryHandler := NewCategoryHandler(cfg.Catalog, cfg.RequestTimeout, cfg.Logger)
	productHandler := NewProductHandler(cfg.Catalog, cfg.RequestTimeout, cfg.Logger)
	customizeHandler := NewCustomizeHandler(cfg.Catalog, cfg.RequestTimeout, cfg.Logger)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(AccessLog(cfg.Logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(MaxBodyMiddleware(cfg.MaxRequestBodySize))

	r.Get("/health", healthHandler(cfg.Health))

	r.Route("/api", func(r chi.Router) {
		r.Route("/category", func(r chi.Router) {
			r.Get("/all-category", categoryHandler.All)
			r.Post("/add-category", categoryHandler.Add)
			r.Post("/edit-category", categoryHandler.Edit)
			r.Post("/delete-category", categoryHandler.Delete)
		})
		r.Route("/product", func(r chi.Router) {
			r.Get("/all-product", productHandler.All)
			r.Post("/single-product", productHandler.Single)
			r.Post("/product-by-category", productHandler.ByCategory)
			r.Post("/product-by-price", productHandler.ByPrice)
			r.Get("/search-filter", productHandler.SearchFilter)
			r.Post("/add-product", productHandler.Add)
			r.Post("/edit-product", productHandler.Edit)
			r.Post("/delete-product", productHandler.Delete)
		})
		r.Route("/customize", func(r chi.Router) {
			r.Get("/get-slide-image", customizeHandler.All)
			r.Post("/upload-slide-image", customizeHandler.Upload)
			r.Post("/delete-slide-image", customizeHandler.Delete)
		})
	})

	if cfg.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	return otelhttp.NewHandler(r, "storefront",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.Check(r.Context()); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
