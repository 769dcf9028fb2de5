// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/inngest/inngestgo"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/brandsight/brandsight-workflows/internal/classifier"
	"github.com/brandsight/brandsight-workflows/internal/config"
	"github.com/brandsight/brandsight-workflows/migrations"
	"github.com/brandsight/brandsight-workflows/services"
	"github.com/brandsight/brandsight-workflows/workflows"
)

func connectDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("dev.env"); err != nil {
			log.Printf("Note: No .env or dev.env file loaded: %v", err)
		} else {
			log.Printf("Loaded dev.env file for local development")
		}
	} else {
		log.Printf("Loaded .env file")
	}

	cfg := config.Load()

	log.Printf("Environment: %s", cfg.Environment)
	log.Printf("Port: %s", cfg.Port)
	log.Printf("Database Host: %s", cfg.Database.Host)
	log.Printf("Database Name: %s", cfg.Database.Name)
	log.Printf("Tracked brand: %s", cfg.BrandName)

	if cfg.OpenAIAPIKey == "" {
		log.Printf("WARNING: OpenAI API key not loaded!")
	}
	if cfg.AnthropicAPIKey == "" {
		log.Printf("WARNING: Anthropic API key not loaded!")
	}
	if cfg.PerplexityAPIKey == "" {
		log.Printf("WARNING: Perplexity API key not loaded!")
	}

	ctx := context.Background()
	db, err := connectDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Printf("Successfully connected to database")

	if err := migrations.Run(db.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Printf("Database migrations applied")

	repoManager := services.NewRepositoryManager(db)
	log.Printf("Repository manager initialized")

	if cfg.Environment == "development" || cfg.Environment == "" {
		os.Unsetenv("INNGEST_SIGNING_KEY")
		cfg.InngestSigningKey = ""
		log.Printf("Running in development mode - signing key verification disabled")
	}

	// Initialize services with repository manager and proper dependencies
	costService := services.NewCostService()
	lexicon := classifier.DefaultLexicon(cfg.BrandName)
	brandClassifier := classifier.New(lexicon)
	scorer := services.NewRandomVisibilityScorer()

	analysisService := services.NewAnalysisService(cfg, repoManager, brandClassifier, costService, scorer)
	aggregationService := services.NewAggregationService(repoManager)
	clientService := services.NewClientService(repoManager)

	suggestionProvider := services.NewOpenAIProvider(cfg, cfg.OpenAIModel, costService)
	seoService := services.NewSEOService(cfg)
	keywordService := services.NewKeywordService(repoManager, suggestionProvider, seoService)
	log.Printf("Services initialized")

	// Bootstrap the default client so scheduled runs have a tenant
	if _, err := clientService.GetOrCreateClient(ctx, cfg.DefaultClient); err != nil {
		log.Printf("Warning: failed to bootstrap default client %q: %v", cfg.DefaultClient, err)
	}

	client, err := inngestgo.NewClient(
		inngestgo.ClientOpts{
			AppID:    "brandsight-workflows",
			EventKey: inngestgo.StrPtr(cfg.InngestEventKey),
			Env:      inngestgo.StrPtr(cfg.Environment),
		},
	)
	if err != nil {
		log.Fatalf("Failed to create Inngest client: %v", err)
	}

	log.Printf("Initializing and registering workflows...")

	analysisProcessor := workflows.NewAnalysisProcessor(analysisService)
	analysisProcessor.SetClient(client)
	analysisProcessor.AnalyzeKeyword()

	scheduledProcessor := workflows.NewScheduledProcessor(clientService, repoManager)
	scheduledProcessor.SetClient(client)
	scheduledProcessor.DailyKeywordProcessor()

	log.Printf("All processors initialized and functions registered")

	h := client.Serve()
	mux := http.NewServeMux()
	mux.Handle("/api/inngest", h)

	api := newAPIHandlers(cfg, aggregationService, keywordService)
	api.register(mux)

	// Root endpoint for ALB health check
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"service":"brandsight-workflows","status":"running"}`))
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	mux.HandleFunc("/test/trigger-analysis", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		keywordID := r.URL.Query().Get("keyword_id")
		if keywordID == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"keyword_id query parameter is required"}`))
			return
		}
		evt := inngestgo.Event{
			Name: "keyword.analyze",
			Data: map[string]interface{}{
				"keyword_id":   keywordID,
				"query":        fmt.Sprintf("What should I know about %s?", cfg.BrandName),
				"triggered_by": "manual_test",
			},
		}
		result, err := client.Send(r.Context(), evt)
		if err != nil {
			log.Printf("Failed to send test event: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(fmt.Sprintf(`{"error":"Failed to send event: %v"}`, err)))
			return
		}
		log.Printf("Test event sent successfully: %+v", result)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(fmt.Sprintf(`{"status":"success","message":"Analysis triggered for keyword %s"}`, keywordID)))
	})

	port := cfg.Port
	log.Printf("Starting Brandsight Workflows service on port %s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}
