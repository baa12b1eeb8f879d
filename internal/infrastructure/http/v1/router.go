// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"partbridge/internal/domain/importer"
	"partbridge/internal/infrastructure/http/v1/handlers"
	"partbridge/internal/infrastructure/http/v1/middleware"
	"partbridge/internal/infrastructure/inventree"
	"partbridge/internal/infrastructure/supplier"
	"partbridge/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Importer runs the search/preview/import flows
	Importer *importer.Service

	// Inventree is used by health checks
	Inventree inventree.API

	// Registry lists configured suppliers
	Registry *supplier.Registry

	// TokenValidator guards the API group when set
	TokenValidator middleware.TokenValidator

	// Version is reported by /health/info
	Version string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Inventree, cfg.Registry, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	api := router.Group("/api/v1")
	if cfg.TokenValidator != nil {
		api.Use(middleware.Auth(cfg.TokenValidator))
	}
	{
		baseHandler := handlers.NewBaseHandler()
		importerHandler := handlers.NewImporterHandler(baseHandler, cfg.Importer)

		api.POST("/search/:supplier", importerHandler.Search)
		api.POST("/import/preview", importerHandler.Preview)
		api.POST("/import", importerHandler.Import)
		api.GET("/imports", importerHandler.History)
	}

	return router
}
