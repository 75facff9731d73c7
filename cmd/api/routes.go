package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/aaxiero/service/internal/admin"
	"github.com/aaxiero/service/internal/category"
	"github.com/aaxiero/service/internal/gallery"
	"github.com/aaxiero/service/internal/icon"
	"github.com/aaxiero/service/internal/metrics"
	appMiddleware "github.com/aaxiero/service/internal/middleware"
	"github.com/aaxiero/service/internal/offering"
	"github.com/aaxiero/service/internal/project"
	"github.com/aaxiero/service/internal/storage"
	"github.com/aaxiero/service/internal/subcategory"

	_ "github.com/aaxiero/service/docs/swagger"
)

type handlers struct {
	admin       *admin.Handler
	category    *category.Handler
	subcategory *subcategory.Handler
	gallery     *gallery.Handler
	project     *project.Handler
	icon        *icon.Handler
	offering    *offering.Handler
}

type routerConfig struct {
	logger    *slog.Logger
	http      *metrics.HTTPObserver
	gatherer  prometheus.Gatherer
	jwtSecret string
	localRoot string // served at storage.URLPrefix when set
}

func newRouter(cfg routerConfig, h handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(cfg.logger, cfg.http))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	if cfg.localRoot != "" {
		files := http.StripPrefix(storage.URLPrefix, http.FileServer(http.Dir(cfg.localRoot)))
		r.Handle(storage.URLPrefix+"/*", files)
	}

	r.Route("/aaxiero", func(r chi.Router) {
		r.Post("/admin/login", h.admin.Login)
		r.Get("/categories", h.category.List)

		r.Route("/admin", func(r chi.Router) {
			r.Use(appMiddleware.RequireAuth(cfg.jwtSecret))

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", h.category.Create)
				r.Get("/", h.category.List)
				r.Get("/{id}", h.category.Get)
				r.Put("/{id}", h.category.Update)
				r.Delete("/{id}", h.category.Delete)
			})

			r.Route("/subcategories", func(r chi.Router) {
				r.Post("/", h.subcategory.Create)
				r.Get("/", h.subcategory.List)
				r.Get("/{id}", h.subcategory.Get)
				r.Put("/{id}", h.subcategory.Update)
				r.Delete("/{id}", h.subcategory.Delete)
			})

			r.Route("/gallery", func(r chi.Router) {
				r.Post("/", h.gallery.CreateOrAppend)
				r.Get("/", h.gallery.List)
				r.Get("/{categoryId}", h.gallery.Get)
				r.Put("/{categoryId}", h.gallery.Replace)
				r.Delete("/{categoryId}", h.gallery.Delete)
			})
			r.Post("/galleries/{galleryID}/images", h.gallery.AddImages)
			r.Delete("/galleries/{galleryID}/images", h.gallery.DeleteImage)

			r.Route("/project", func(r chi.Router) {
				r.Post("/", h.project.Create)
				r.Get("/", h.project.List)
				r.Get("/{id}", h.project.Get)
				r.Put("/{id}", h.project.Update)
				r.Delete("/{id}", h.project.Delete)
				r.Delete("/{id}/images/{slot}", h.project.ClearSlot)
			})

			r.Route("/icons", func(r chi.Router) {
				r.Post("/", h.icon.Create)
				r.Get("/", h.icon.List)
				r.Delete("/{id}", h.icon.Delete)
			})

			r.Route("/service", func(r chi.Router) {
				r.Post("/", h.offering.Create)
				r.Get("/", h.offering.List)
				r.Get("/{id}", h.offering.Get)
				r.Put("/{id}", h.offering.Update)
				r.Delete("/{id}", h.offering.Delete)
			})
		})
	})

	return r
}
