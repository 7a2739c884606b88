package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/firmatch/jobmatch-backend/internal/adapters/cache"
	"github.com/firmatch/jobmatch-backend/internal/adapters/database"
	"github.com/firmatch/jobmatch-backend/internal/application/services"
	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
	"github.com/firmatch/jobmatch-backend/internal/domain/providers"
	"github.com/firmatch/jobmatch-backend/internal/infrastructure/clients/openai"
	"github.com/firmatch/jobmatch-backend/internal/infrastructure/clients/postgres"
	"github.com/firmatch/jobmatch-backend/internal/infrastructure/clients/redis"
	"github.com/firmatch/jobmatch-backend/internal/infrastructure/observability"
	"github.com/firmatch/jobmatch-backend/pkg/config"
)

func main() {
	var query string
	var telegramID int64
	var topK int
	var forceSemantic bool
	var byCV bool
	var recent bool
	var asJSON bool

	flag.StringVar(&query, "query", "", "Free-text job search query")
	flag.Int64Var(&telegramID, "telegram-id", 0, "Telegram user ID")
	flag.IntVar(&topK, "top-k", 0, "Number of results (0 uses the configured default)")
	flag.BoolVar(&forceSemantic, "semantic", false, "Re-rank even when the lexical tier is small")
	flag.BoolVar(&byCV, "cv", false, "Match against the user's stored CV instead of a query")
	flag.BoolVar(&recent, "recent", false, "Show the user's most recent recorded matches")
	flag.BoolVar(&asJSON, "json", false, "Print results as JSON")
	flag.Parse()

	if query == "" && !byCV && !recent {
		fmt.Fprintln(os.Stderr, "one of -query, -cv or -recent is required")
		flag.Usage()
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger("jobmatch-search", cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
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
		}
	}

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

	// Initialize Redis client
	var cacheProvider providers.CacheProvider
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - every query pays for its own extraction
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	openaiClient, err := openai.NewClient(&cfg.OpenAI)
	if err != nil {
		log.Fatalf("Failed to create OpenAI client: %v", err)
	}

	// Initialize adapters
	jobRepo := database.NewJobAdapter(pgClient)
	userRepo := database.NewUserAdapter(pgClient)
	searchLogRepo := database.NewSearchLogAdapter(pgClient)
	matchRepo := database.NewMatchAdapter(pgClient)

	// Initialize services
	matchService := services.NewMatchService(
		services.NewPreferenceService(openaiClient, cacheProvider, cfg.Matching.PreferenceCacheTTL),
		services.NewCatalogSearchService(jobRepo),
		services.NewSemanticRankingService(openaiClient),
		jobRepo,
		userRepo,
		searchLogRepo,
		matchRepo,
		metrics,
		cfg.Matching.DefaultTopK,
		cfg.Matching.CVSimilarityFloor,
	)

	switch {
	case recent:
		matches, err := matchService.RecentMatches(ctx, telegramID, topK)
		if err != nil {
			log.Fatalf("Failed to load recent matches: %v", err)
		}
		printMatches(matches, asJSON)
	case byCV:
		matches, err := matchService.MatchCV(ctx, telegramID, topK)
		if err != nil {
			log.Fatalf("CV match failed: %v", err)
		}
		printMatches(matches, asJSON)
	default:
		outcome, err := matchService.Match(ctx, services.MatchRequest{
			TelegramID:    telegramID,
			Query:         query,
			TopK:          topK,
			ForceSemantic: forceSemantic,
		})
		if err != nil {
			log.Fatalf("Search failed: %v", err)
		}
		printOutcome(outcome, asJSON)
	}
}

func printOutcome(outcome *entities.MatchOutcome, asJSON bool) {
	if asJSON {
		data, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode outcome: %v", err)
		}
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Preferences: %s\n", outcome.Preferences.MarshalString())
	if len(outcome.RelaxedFields) > 0 {
		fmt.Printf("Relaxed constraints: %v\n", outcome.RelaxedFields)
	}
	if outcome.Degraded {
		fmt.Println("Note: some services were unavailable; results may be broader than usual")
	}
	printMatches(outcome.Matches, false)
}

func printMatches(matches []entities.Match, asJSON bool) {
	if asJSON {
		data, err := json.MarshalIndent(matches, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode matches: %v", err)
		}
		fmt.Println(string(data))
		return
	}

	if len(matches) == 0 {
		fmt.Println("No matching jobs found.")
		return
	}

	for i, match := range matches {
		job := match.Job
		fmt.Printf("%d. %s", i+1, job.JobTitle)
		if job.FirmName != "" {
			fmt.Printf(" at %s", job.FirmName)
		}
		if job.Location != "" {
			fmt.Printf(" (%s)", job.Location)
		}
		if match.MatchedVia == entities.MatchKindSemantic {
			fmt.Printf(" [similarity %.3f]", match.Score)
		}
		fmt.Println()
		if job.Link != "" {
			fmt.Printf("   %s\n", job.Link)
		}
	}
}
