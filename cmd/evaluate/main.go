package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veridoc/docguard/internal/adapters/database"
	"github.com/veridoc/docguard/internal/adapters/events"
	"github.com/veridoc/docguard/internal/application/services"
	"github.com/veridoc/docguard/internal/domain/entities"
	"github.com/veridoc/docguard/internal/domain/providers"
	"github.com/veridoc/docguard/internal/infrastructure/clients/postgres"
	"github.com/veridoc/docguard/internal/infrastructure/clients/redis"
	"github.com/veridoc/docguard/internal/infrastructure/observability"
	"github.com/veridoc/docguard/pkg/config"
	apperrors "github.com/veridoc/docguard/pkg/errors"
)

// Batch compliance evaluation: re-runs every active framework over stored
// documents. Meant for cron after framework definitions change.
func main() {
	var documentID string
	var batchSize int

	flag.StringVar(&documentID, "document", "", "Single document ID to evaluate")
	flag.IntVar(&batchSize, "batch-size", 100, "Documents per page")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName+"-evaluate", cfg.Server.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pgClient.Close()

	var alertPublisher providers.AlertPublisher
	if redisClient, err := redis.NewClient(&cfg.Redis); err == nil {
		defer redisClient.Close()
		alertPublisher = events.NewRedisAlertPublisher(redisClient, cfg.Engine.AlertChannel)
	} else {
		log.Printf("Warning: Redis unavailable, operator alerts disabled: %v", err)
	}

	documentRepo := database.NewDocumentAdapter(pgClient)
	entitySetRepo := database.NewEntitySetAdapter(pgClient)
	auditService := services.NewAuditService(database.NewAuditAdapter(pgClient), alertPublisher, nil)
	extractionService := services.NewExtractionService(entitySetRepo)
	complianceService := services.NewComplianceService(
		database.NewFrameworkAdapter(pgClient),
		database.NewComplianceCheckAdapter(pgClient),
		auditService,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	frameworkIDs, err := complianceService.ActiveFrameworkIDs(ctx)
	if err != nil {
		log.Fatalf("Failed to list active frameworks: %v", err)
	}
	if len(frameworkIDs) == 0 {
		log.Println("No active compliance frameworks configured, nothing to do")
		return
	}

	actor := entities.Actor{UserID: "compliance-batch"}
	start := time.Now()
	evaluated, failed := 0, 0

	evaluate := func(doc *entities.Document) {
		set, err := extractionService.GetLatest(ctx, doc.ID)
		if err != nil {
			if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
				log.Printf("Failed to load entity set for %s: %v", doc.ID, err)
				failed++
				return
			}
			set = nil
		}

		for _, result := range complianceService.EvaluateAll(ctx, actor, doc, set, frameworkIDs) {
			if result.Err != "" {
				log.Printf("Evaluation failed for document %s framework %s: %s", doc.ID, result.FrameworkID, result.Err)
				failed++
				continue
			}
			evaluated++
		}
	}

	if documentID != "" {
		doc, err := documentRepo.GetByID(ctx, documentID)
		if err != nil {
			log.Fatalf("Failed to load document %s: %v", documentID, err)
		}
		evaluate(doc)
	} else {
		for offset := 0; ; offset += batchSize {
			docs, err := documentRepo.List(ctx, batchSize, offset)
			if err != nil {
				log.Fatalf("Failed to list documents: %v", err)
			}
			if len(docs) == 0 {
				break
			}
			for _, doc := range docs {
				if ctx.Err() != nil {
					log.Println("Interrupted, stopping")
					break
				}
				evaluate(doc)
			}
			if ctx.Err() != nil {
				break
			}
		}
	}

	log.Printf("Evaluation complete in %s: %d checks written, %d failures", time.Since(start), evaluated, failed)
}
