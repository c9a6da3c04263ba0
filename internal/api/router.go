package api

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/resale-ops/internal/api/handler"
	"github.com/resale-ops/internal/api/middleware"
	"github.com/resale-ops/internal/config"
)

// handlers groups the REST handlers mounted by setupRouter
type handlers struct {
	products   *handler.ProductHandler
	buyingList *handler.BuyingListHandler
	suppliers  *handler.SupplierHandler
	sourcing   *handler.SourcingHandler
	jobs       *handler.JobHandler
	dashboard  *handler.DashboardHandler
	pricing    *handler.PricingHandler
	health     *handler.HealthHandler
}

// corsMiddleware allows every origin outside production. In production only
// the configured origins are allowed, and none when the list is empty.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if cfg.Application.IsProduction() {
		if len(cfg.Server.CORSAllowedOrigins) == 0 {
			return nil
		}
		corsConfig.AllowOrigins = cfg.Server.CORSAllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders(middleware.CorrelationIDHeader, middleware.OrganisationIDHeader)
	corsConfig.AddExposeHeaders(middleware.CorrelationIDHeader)
	return cors.New(corsConfig)
}

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	cfg *config.Config,
	r *gin.Engine,
	tracker *middleware.ErrorTracker,
	h handlers,
) {
	if mw := corsMiddleware(cfg); mw != nil {
		r.Use(mw)
	}
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Organisation(cfg.Inventory.DefaultOrganisationID))
	r.Use(middleware.Logger(logger))
	r.Use(tracker.Track())
	r.Use(middleware.Recovery(logger, tracker))

	api := r.Group("/api")
	{
		products := api.Group("/products")
		{
			products.GET("", h.products.List)
			products.POST("", h.products.Create)
			products.GET("/:id", h.products.Get)
			products.PUT("/:id", h.products.Update)
			products.DELETE("/:id", h.products.Delete)
			products.POST("/:id/sell", h.products.Sell)
		}

		buyingList := api.Group("/buying-list")
		{
			buyingList.GET("", h.buyingList.List)
			buyingList.POST("", h.buyingList.Create)
			buyingList.GET("/:id", h.buyingList.Get)
			buyingList.PUT("/:id", h.buyingList.Update)
			buyingList.DELETE("/:id", h.buyingList.Delete)
			buyingList.POST("/:id/receive", h.buyingList.Receive)
		}

		suppliers := api.Group("/suppliers")
		{
			suppliers.GET("", h.suppliers.List)
			suppliers.POST("", h.suppliers.Create)
			suppliers.POST("/import", h.suppliers.Import)
			suppliers.GET("/:id", h.suppliers.Get)
			suppliers.PUT("/:id", h.suppliers.Update)
			suppliers.GET("/:id/items", h.suppliers.ListItems)
		}

		sourcing := api.Group("/sourcing")
		{
			sourcing.GET("", h.sourcing.List)
			sourcing.POST("", h.sourcing.Create)
			sourcing.GET("/:id", h.sourcing.Get)
			sourcing.PUT("/:id", h.sourcing.Update)
		}

		dashboard := api.Group("/dashboard")
		{
			dashboard.GET("/kpis", h.dashboard.KPIs)
			dashboard.GET("/activity", h.dashboard.Activity)
			dashboard.GET("/status", h.dashboard.Status)
			dashboard.GET("/profit-summary", h.dashboard.ProfitSummary)
		}

		jobs := api.Group("/jobs")
		{
			jobs.GET("", h.jobs.List)
			jobs.GET("/:id", h.jobs.Get)
			jobs.POST("/:id/retry", h.jobs.Retry)
			jobs.POST("/:id/cancel", h.jobs.Cancel)
		}

		pricing := api.Group("/pricing")
		{
			pricing.POST("/analyse", h.pricing.Analyse)
			pricing.GET("/analyses", h.pricing.Recent)
		}

		api.GET("/health", h.health.Health)
	}

	// Health check endpoint for monitoring
	r.GET("/health", h.health.Health)
}
