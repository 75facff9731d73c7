package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/aaxiero/service/internal/admin"
	"github.com/aaxiero/service/internal/asset"
	"github.com/aaxiero/service/internal/category"
	"github.com/aaxiero/service/internal/config"
	"github.com/aaxiero/service/internal/db"
	"github.com/aaxiero/service/internal/gallery"
	"github.com/aaxiero/service/internal/icon"
	"github.com/aaxiero/service/internal/metrics"
	"github.com/aaxiero/service/internal/offering"
	"github.com/aaxiero/service/internal/project"
	"github.com/aaxiero/service/internal/request"
	"github.com/aaxiero/service/internal/retry"
	"github.com/aaxiero/service/internal/storage"
	"github.com/aaxiero/service/internal/subcategory"
)

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	newLogger(cfg)
	return db.Migrate(cfg.DatabaseURL)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storeMetrics, err := metrics.NewStoreObserver(reg)
	if err != nil {
		return err
	}
	httpMetrics, err := metrics.NewHTTPObserver(reg)
	if err != nil {
		return err
	}

	store, localRoot, err := newStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("object storage init failed: %w", err)
	}
	assets := asset.NewManager(storage.Observe(store, cfg.StorageMode, storeMetrics), logger)
	uploads := request.Uploads{StagingDir: cfg.UploadStagingDir, MaxBytes: cfg.UploadMaxBytes}
	bootstrap := retry.Linear(cfg.BootstrapAttempts, cfg.BootstrapBackoff)

	// Wire dependencies: repository → service → handler
	adminSvc := admin.NewService(admin.NewRepository(pool), cfg.JWTSecret, cfg.JWTExpiresIn, bootstrap, logger)
	if cfg.AdminPassword != "" {
		created, err := adminSvc.EnsureDefault(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("default admin bootstrap failed: %w", err)
		}
		logger.Info("default admin checked", slog.String("email", cfg.AdminEmail), slog.Bool("created", created))
	}

	gallerySvc := gallery.NewService(gallery.NewRepository(pool), assets, logger)
	iconSvc := icon.NewService(icon.NewRepository(pool))

	h := handlers{
		admin:       admin.NewHandler(adminSvc),
		category:    category.NewHandler(category.NewService(category.NewRepository(pool), gallerySvc)),
		subcategory: subcategory.NewHandler(subcategory.NewService(subcategory.NewRepository(pool), assets), uploads),
		gallery:     gallery.NewHandler(gallerySvc, uploads),
		project:     project.NewHandler(project.NewService(project.NewRepository(pool), assets, logger), uploads),
		icon:        icon.NewHandler(iconSvc),
		offering:    offering.NewHandler(offering.NewService(offering.NewRepository(pool), iconSvc)),
	}

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: newRouter(routerConfig{
			logger:    logger,
			http:      httpMetrics,
			gatherer:  reg,
			jwtSecret: cfg.JWTSecret,
			localRoot: localRoot,
		}, h),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("port", cfg.Port), slog.String("env", cfg.AppEnv))
		logger.Info("swagger UI available", slog.String("url", "http://localhost:"+cfg.Port+"/swagger/"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// newStore builds the configured asset store. localRoot is the directory to
// serve at storage.URLPrefix, empty when assets live in object storage.
func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, string, error) {
	switch cfg.StorageMode {
	case config.StorageMinio:
		store, err := storage.NewMinio(ctx, storage.MinioOptions{
			Endpoint:   cfg.StorageEndpoint,
			AccessKey:  cfg.StorageAccessKey,
			SecretKey:  cfg.StorageSecretKey,
			Bucket:     cfg.StorageBucket,
			PublicBase: cfg.StoragePublicBase,
			UseSSL:     cfg.StorageUseSSL,
		}, logger)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	case config.StorageLocal:
		store, err := storage.NewLocal(cfg.UploadDir, cfg.UploadPublicBase)
		if err != nil {
			return nil, "", err
		}
		return store, store.Root(), nil
	default:
		return nil, "", fmt.Errorf("unknown STORAGE_MODE %q", cfg.StorageMode)
	}
}
