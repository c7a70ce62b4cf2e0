package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"alloia/internal/alloia"
	"alloia/internal/api/handlers"
	"alloia/internal/api/middleware"
	"alloia/internal/catalog"
	"alloia/internal/config"
	"alloia/internal/database"
	"alloia/internal/export"
	"alloia/internal/kvstore"
	"alloia/internal/logger"
	"alloia/internal/queue"
	"alloia/internal/robots"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config      *config.Config
	logger      *logger.Logger
	db          *database.Database
	router      *gin.Engine
	server      *http.Server
	provisioner *robots.Provisioner
}

func New(cfg *config.Config, log *logger.Logger, db *database.Database) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Shared infrastructure
	kv := kvstore.NewGorm(db.DB)
	store := catalog.NewGormStore(db.DB)
	meta := catalog.NewGormMetaStore(db.DB)
	client := alloia.NewClient(cfg.AlloiaBaseURL, cfg.AlloiaAPIKey, cfg.SiteURL, log)
	scheduler := queue.NewKafkaScheduler(cfg.KafkaBrokers, log)
	detector := robots.NewDetector(nil, log)
	provisioner := robots.NewProvisioner(client, kv, cfg.SiteURL, log)

	// Pipeline
	ledger := export.NewLedger(kv, client, cfg.ExportBatchSize, log)
	extractor := export.NewExtractor(store, log)
	transformer := export.NewTransformer(cfg.SiteURL, cfg.Currency, cfg.WeightUnit, cfg.DimensionUnit)
	submitter := export.NewSubmitter(client, meta, ledger, log)
	runs := export.NewRunStore(kv)
	exporter := export.NewExporter(client, extractor, transformer, submitter, runs, scheduler, log)

	// Middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())
	router.Use(middleware.BotRedirect(detector, cfg.RedirectEnabled, log))

	// Handlers
	exportHandler := handlers.NewExportHandler(exporter, ledger, scheduler, log)
	analyticsHandler := handlers.NewAnalyticsHandler(client, provisioner, log)
	contentHandler := handlers.NewContentHandler(
		robots.NewGenerator(cfg.SiteURL, cfg.AISubdomain, cfg.LLMTraining),
		robots.NewLLMSGenerator(cfg.SiteURL, cfg.SiteName, log),
		robots.NewAuditor(cfg.SiteURL, cfg.AISubdomain, kv, log),
		store,
		cfg.SiteName,
		cfg.Currency,
		cfg.LLMSTxtEnabled,
		cfg.MetadataEnabled,
		log,
	)

	// Crawler artifacts
	router.GET("/robots.txt", contentHandler.RobotsTxt)
	router.GET("/llms.txt", contentHandler.LLMSTxt)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, client.HealthCheck(c.Request.Context()))
	})

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Export pipeline
		exports := v1.Group("/export")
		{
			exports.POST("", exportHandler.Export)
			exports.GET("/status/:id", exportHandler.Status)
			exports.GET("/statistics", exportHandler.Statistics)
			exports.PUT("/batch-size", exportHandler.UpdateBatchSize)
		}
		v1.POST("/sync-all", exportHandler.SyncAll)
		v1.POST("/products/:id/sync", exportHandler.SyncProduct)

		// Remote service
		v1.GET("/validate-key", analyticsHandler.ValidateKey)
		v1.GET("/subscription", analyticsHandler.Subscription)
		v1.GET("/usage", analyticsHandler.Usage)
		v1.POST("/tracking/provision", analyticsHandler.ProvisionTracking)

		// Analytics passthrough
		analytics := v1.Group("/analytics")
		{
			analytics.GET("/ai-visits", analyticsHandler.AIVisits)
			analytics.GET("/prompts", analyticsHandler.Prompts)
			analytics.GET("/prompts/leaderboard", analyticsHandler.PromptLeaderboard)
			analytics.GET("/robots-scan", analyticsHandler.RobotsScan)
		}

		// AI readiness
		v1.GET("/audit", contentHandler.Audit)
		v1.GET("/ai-ready-score", contentHandler.AIReadyScore)

		// Product metadata (JSON-LD)
		v1.GET("/products/:slug/metadata", contentHandler.ProductMetadata)
		v1.GET("/products/:slug/status", analyticsHandler.ProductStatus)
		v1.DELETE("/products/:id", analyticsHandler.DeleteProduct)
	}

	return &Server{
		config:      cfg,
		logger:      log,
		db:          db,
		router:      router,
		provisioner: provisioner,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	// Provision bot tracking in the background; startup must not block
	// on the remote service.
	if s.config.AlloiaAPIKey != "" {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			if _, err := s.provisioner.Ensure(ctx); err != nil {
				s.logger.Warn("Tracking provisioning deferred: %v", err)
			}
		}()
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
