package api

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rapidcart/catalog/internal/app"
	"github.com/rapidcart/catalog/internal/handlers"
	"github.com/rapidcart/catalog/internal/middleware"
	"github.com/rapidcart/catalog/internal/services"
)

const serviceName = "catalog"

// NewRouter builds the Gin engine, wires middleware and registers the
// catalog routes.
func NewRouter(svc *services.RecordService, cfg *app.Config, rateStore middleware.RateStore) (*gin.Engine, error) {
	if svc == nil {
		return nil, fmt.Errorf("record service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(cors.Default())
	if cfg.Server.RateLimit.Enabled {
		r.Use(middleware.RateLimit(rateStore, cfg.Server.RateLimit.MaxRequests, cfg.Server.RateLimit.Window))
	}

	// Liveness probe
	r.GET("/health", handlers.Health(serviceName))

	recordHandler, err := handlers.NewRecordHandler(svc)
	if err != nil {
		return nil, err
	}

	records := r.Group("/records")
	{
		records.GET("", recordHandler.List)
		records.GET("/:id", recordHandler.Get)
		records.POST("", recordHandler.Create)
		records.PUT("/:id", recordHandler.Update)
	}

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
