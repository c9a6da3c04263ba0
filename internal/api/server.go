package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/resale-ops/internal/api/handler"
	"github.com/resale-ops/internal/api/middleware"
	"github.com/resale-ops/internal/api/service"
	"github.com/resale-ops/internal/config"
)

// Services are the application services the REST API is built on
type Services struct {
	Products   service.ProductService
	BuyingList service.BuyingListService
	Suppliers  service.SupplierService
	Sourcing   service.SourcingService
	Jobs       service.JobService
	Dashboard  service.DashboardService
	Pricing    service.PricingService
	// Health is pinged by /health. It may be nil.
	Health handler.Checker
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger          *slog.Logger // For structured logging
	httpServer      *http.Server // Underlying HTTP server
	httpRouter      *gin.Engine  // Gin router instance
	shutdownTimeout time.Duration
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, services Services, tracker *middleware.ErrorTracker) *Server {
	if cfg.Application.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.UseJSONFieldNames()

	httpRouter := gin.New()
	if cfg.Server.MaxUploadBytes > 0 {
		httpRouter.MaxMultipartMemory = cfg.Server.MaxUploadBytes
	}

	setupRouter(log, cfg, httpRouter, tracker, handlers{
		products:   handler.NewProductHandler(log, services.Products),
		buyingList: handler.NewBuyingListHandler(log, services.BuyingList),
		suppliers:  handler.NewSupplierHandler(log, services.Suppliers, cfg.Server.MaxUploadBytes),
		sourcing:   handler.NewSourcingHandler(log, services.Sourcing),
		jobs:       handler.NewJobHandler(log, services.Jobs),
		dashboard:  handler.NewDashboardHandler(log, services.Dashboard),
		pricing:    handler.NewPricingHandler(log, services.Pricing),
		health:     handler.NewHealthHandler(services.Health),
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:          log,
		httpServer:      httpServer,
		httpRouter:      httpRouter,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server, waiting at most the configured
// shutdown timeout for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
