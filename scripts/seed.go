package main

import (
	"context"
	"log"

	"github.com/veridoc/docguard/internal/adapters/database"
	"github.com/veridoc/docguard/internal/domain/entities"
	"github.com/veridoc/docguard/internal/infrastructure/clients/postgres"
	"github.com/veridoc/docguard/pkg/config"
)

// Seeds the baseline compliance framework definitions. Idempotent: reruns
// overwrite the same framework IDs.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	frameworks := []*entities.ComplianceFramework{
		{
			ID:   "sox-2024",
			Name: "SOX",
			Requirements: map[string]string{
				"financial_controls": "documented approval chain for amounts above reporting threshold",
				"retention":          "7 years",
			},
			Adjustment: entities.FrameworkAdjustment{
				Kind:   entities.AdjustmentFixedBonus,
				Points: 10,
			},
			IsActive: true,
		},
		{
			ID:   "gdpr-2024",
			Name: "GDPR",
			Requirements: map[string]string{
				"lawful_basis": "documented basis for processing personal data",
				"retention":    "no longer than necessary",
			},
			Adjustment: entities.FrameworkAdjustment{
				Kind:   entities.AdjustmentTagPenalty,
				Tag:    "personal_data",
				Points: 5,
			},
			IsActive: true,
		},
		{
			ID:   "internal-baseline",
			Name: "Internal Baseline",
			Requirements: map[string]string{
				"completeness": "document carries text, metadata and extracted entities",
			},
			Adjustment: entities.FrameworkAdjustment{Kind: entities.AdjustmentNone},
			IsActive:   true,
		},
	}

	repo := database.NewFrameworkAdapter(pgClient)
	ctx := context.Background()
	for _, framework := range frameworks {
		if err := repo.Upsert(ctx, framework); err != nil {
			log.Fatalf("Failed to seed framework %s: %v", framework.ID, err)
		}
		log.Printf("Seeded framework %s (%s)", framework.ID, framework.Name)
	}

	log.Println("Seed complete")
}
