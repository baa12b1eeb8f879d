// Package main is the entry point for the partbridge API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"partbridge/internal/domain/auth"
	"partbridge/internal/domain/importer"
	"partbridge/internal/infrastructure/config"
	v1 "partbridge/internal/infrastructure/http/v1"
	"partbridge/internal/infrastructure/http/v1/middleware"
	"partbridge/internal/infrastructure/inventree"
	"partbridge/internal/infrastructure/storage/postgres"
	"partbridge/internal/infrastructure/supplier"
	"partbridge/internal/infrastructure/supplier/digikey"
	"partbridge/internal/infrastructure/supplier/mouser"
	"partbridge/pkg/logger"
)

const version = "0.1.0"

func main() {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	cfg := config.FromEnv()

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Infow("starting partbridge server", "version", version)

	// --- Inventory client ---
	inv, err := inventree.NewClient(inventree.Config{
		BaseURL: cfg.Inventree.BaseURL,
		Token:   cfg.Inventree.Token,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		log.Fatalw("failed to configure inventory client", "error", err)
	}

	// --- Supplier registry ---
	var clients []supplier.Client
	if cfg.SupplierEnabled("mouser") {
		clients = append(clients, mouser.New(mouser.Config{
			APIKey:          cfg.Mouser.APIKey,
			BaseURL:         cfg.Mouser.BaseURL,
			CompanyID:       cfg.Mouser.CompanyID,
			DefaultCurrency: cfg.DefaultCurrency,
			Timeout:         cfg.RequestTimeout,
		}, log))
	}
	if cfg.SupplierEnabled("digikey") {
		clients = append(clients, digikey.New(digikey.Config{
			ClientID:        cfg.Digikey.ClientID,
			ClientSecret:    cfg.Digikey.ClientSecret,
			BaseURL:         cfg.Digikey.BaseURL,
			TokenURL:        cfg.Digikey.TokenURL,
			CompanyID:       cfg.Digikey.CompanyID,
			DefaultCurrency: cfg.DefaultCurrency,
			Timeout:         cfg.RequestTimeout,
		}, log))
	}
	registry := supplier.NewRegistry(clients...)
	log.Infow("supplier registry initialized", "suppliers", registry.Slugs())

	// --- Category map and part rules ---
	loader := config.NewLoader(cfg.ConfigDir, log)

	// --- Import history (optional) ---
	var history importer.History
	var pool *postgres.Pool
	if cfg.DatabaseURL != "" {
		pool, err = postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer pool.Close()

		store, err := postgres.NewImportLogStore(pool)
		if err != nil {
			log.Fatalw("failed to create import log store", "error", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatalw("failed to prepare import log schema", "error", err)
		}
		history = store
		log.Info("import history enabled")
	}

	// --- Importer ---
	svc, err := importer.NewService(importer.ServiceConfig{
		Registry:        registry,
		Loader:          loader,
		Inventree:       inv,
		History:         history,
		Logger:          log,
		DefaultCurrency: cfg.DefaultCurrency,
	})
	if err != nil {
		log.Fatalw("failed to create importer", "error", err)
	}

	// --- Optional API auth ---
	var validator middleware.TokenValidator
	if cfg.JWTSecret != "" {
		validator = auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
		log.Info("API authentication enabled")
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		Importer:       svc,
		Inventree:      inv,
		Registry:       registry,
		TokenValidator: validator,
		Version:        version,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
