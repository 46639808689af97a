package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/healthcare-bi/backend/internal/config"
	"github.com/healthcare-bi/backend/internal/http/handlers"
	"github.com/healthcare-bi/backend/internal/http/middleware"
	"github.com/healthcare-bi/backend/internal/metrics"

	_ "github.com/healthcare-bi/backend/docs"
)

// Deps are the services the HTTP layer delegates to.
type Deps struct {
	Store    handlers.Store
	Ingest   handlers.Ingester
	Sync     handlers.CompanySyncer
	Resolver handlers.CompanyResolver
	Metrics  *metrics.Registry
}

func Router(cfg config.Config, deps Deps, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     deps.Store,
		Ingester:  deps.Ingest,
		Sync:      deps.Sync,
		Resolver:  deps.Resolver,
		Validator: validator.New(),
		Logger:    logger,
		DaysBack:  cfg.DaysBack,
	}

	r.GET("/healthz", h.Healthz)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		api.GET("/orders", h.OrdersList)
		api.GET("/companies", h.CompaniesList)
		api.GET("/runs/latest", h.RunsLatest)

		api.GET("/reliability/mtbf", h.MTBF)
		api.GET("/reliability/mttr", h.MTTR)
		api.GET("/reliability/availability", h.Availability)

		api.GET("/dashboard/kpis", h.KPIs)
		api.GET("/dashboard/heatmap", h.Heatmap)
		api.GET("/dashboard/trend", h.Trend)
		api.GET("/dashboard/breakdown", h.Breakdown)
		api.GET("/dashboard/costs", h.Costs)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/ingest", h.Ingest)
		admin.POST("/companies/sync", h.SyncCompanies)
		admin.POST("/companies/resolve", h.ResolveCompany)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
