package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veridoc/docguard/internal/adapters/cache"
	"github.com/veridoc/docguard/internal/adapters/database"
	"github.com/veridoc/docguard/internal/adapters/events"
	"github.com/veridoc/docguard/internal/api/handlers"
	"github.com/veridoc/docguard/internal/api/routes"
	"github.com/veridoc/docguard/internal/application/services"
	"github.com/veridoc/docguard/internal/domain/providers"
	"github.com/veridoc/docguard/internal/domain/repositories"
	"github.com/veridoc/docguard/internal/infrastructure/clients/postgres"
	"github.com/veridoc/docguard/internal/infrastructure/clients/redis"
	"github.com/veridoc/docguard/internal/infrastructure/observability"
	"github.com/veridoc/docguard/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client. The engine degrades gracefully without it:
	// no assessment cache and no operator alerts, but scoring still works.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	var alertPublisher providers.AlertPublisher
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
		alertPublisher = events.NewRedisAlertPublisher(redisClient, cfg.Engine.AlertChannel)
	}

	// Initialize adapters
	documentAdapter := database.NewDocumentAdapter(pgClient)
	entitySetAdapter := database.NewEntitySetAdapter(pgClient)
	frameworkAdapter := database.NewFrameworkAdapter(pgClient)
	checkAdapter := database.NewComplianceCheckAdapter(pgClient)
	auditAdapter := database.NewAuditAdapter(pgClient)
	workflowAdapter := database.NewWorkflowAdapter(pgClient)

	var assessmentAdapter repositories.RiskAssessmentRepository = database.NewRiskAssessmentAdapter(pgClient)
	if cacheProvider != nil {
		assessmentAdapter = database.NewCachedAssessmentAdapter(assessmentAdapter, cacheProvider, cfg.Engine.AssessmentCacheTTLSeconds)
		log.Println("Assessment adapter wrapped with caching layer")
	}

	// Initialize services
	auditService := services.NewAuditService(auditAdapter, alertPublisher, metrics)
	extractionService := services.NewExtractionService(entitySetAdapter)
	riskService := services.NewRiskService(assessmentAdapter, auditService, cfg.Engine.ReviewThreshold)
	complianceService := services.NewComplianceService(frameworkAdapter, checkAdapter, auditService)
	workflowService := services.NewWorkflowService(workflowAdapter, auditService)
	documentService := services.NewDocumentService(documentAdapter, extractionService, riskService, auditService, metrics)

	// Initialize handlers
	documentHandler := handlers.NewDocumentHandler(documentService)
	riskHandler := handlers.NewRiskHandler(riskService)
	complianceHandler := handlers.NewComplianceHandler(complianceService, documentService, extractionService)
	auditHandler := handlers.NewAuditHandler(auditService)
	workflowHandler := handlers.NewWorkflowHandler(workflowService)

	// Set up router
	router := routes.NewRouter(
		documentHandler,
		riskHandler,
		complianceHandler,
		auditHandler,
		workflowHandler,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := cfg.Server.ServerAddr()
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Server stopped")
}
