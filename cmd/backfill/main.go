package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/firmatch/jobmatch-backend/internal/adapters/database"
	"github.com/firmatch/jobmatch-backend/internal/application/services"
	"github.com/firmatch/jobmatch-backend/internal/infrastructure/clients/openai"
	"github.com/firmatch/jobmatch-backend/internal/infrastructure/clients/postgres"
	"github.com/firmatch/jobmatch-backend/internal/infrastructure/observability"
	"github.com/firmatch/jobmatch-backend/pkg/config"
)

func main() {
	var workers int
	var batchSize int
	var jobID int64

	flag.IntVar(&workers, "workers", 3, "Number of concurrent workers")
	flag.IntVar(&batchSize, "batch", services.DefaultBackfillBatchSize, "Jobs fetched per listing")
	flag.Int64Var(&jobID, "job", 0, "Single job ID to embed")
	flag.Parse()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	observability.InitLogger("jobmatch-backfill", cfg.Environment)

	// Setup DB
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pgClient.Close()

	jobRepo := database.NewJobAdapter(pgClient)

	// Setup provider
	provider, err := openai.NewClient(&cfg.OpenAI)
	if err != nil {
		log.Fatalf("Failed to create OpenAI client: %v", err)
	}

	maxAge := time.Duration(cfg.Matching.EmbeddingStaleDays) * 24 * time.Hour
	svc := services.NewEmbeddingBackfillService(jobRepo, provider, workers, batchSize, maxAge)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()

	if jobID != 0 {
		log.Printf("Embedding single job: %d", jobID)
		job, err := jobRepo.GetByID(ctx, jobID)
		if err != nil {
			log.Fatalf("Failed to load job %d: %v", jobID, err)
		}
		if err := svc.BackfillSingle(ctx, job); err != nil {
			log.Fatalf("Failed to embed job %d: %v", jobID, err)
		}
		log.Printf("Successfully embedded job %d", jobID)
	} else {
		log.Printf("Starting embedding backfill with %d workers...", workers)
		summary, err := svc.BackfillAll(ctx)
		if err != nil {
			log.Printf("Backfill failed: %v", err)
		}

		if summary != nil {
			log.Printf("Backfill complete in %s", time.Since(start))
			log.Printf("Total processed: %d", summary.TotalProcessed)
			log.Printf("Success: %d", summary.SuccessCount)
			log.Printf("Failed: %d", summary.FailureCount)
		}
	}
}
