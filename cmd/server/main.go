package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/advisorhq/portfolio-advisor/internal/advisor"
	"github.com/advisorhq/portfolio-advisor/internal/api"
	"github.com/advisorhq/portfolio-advisor/internal/config"
	"github.com/advisorhq/portfolio-advisor/internal/database"
	"github.com/advisorhq/portfolio-advisor/internal/llm"
	"github.com/advisorhq/portfolio-advisor/internal/metrics"
	"github.com/advisorhq/portfolio-advisor/internal/pricing"
	"github.com/advisorhq/portfolio-advisor/internal/repository"
	"github.com/advisorhq/portfolio-advisor/internal/scheduler"
	"github.com/advisorhq/portfolio-advisor/internal/secure"
	"github.com/advisorhq/portfolio-advisor/internal/service"
	"github.com/advisorhq/portfolio-advisor/internal/yahoo"
)

const (
	priceCacheTTL    = 15 * time.Minute
	warmJobSchedule  = "@every 15m"
	warmJobTimeout   = 2 * time.Minute
	shutdownDeadline = 30 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection and apply migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Questionnaire payloads are encrypted at rest when a key is configured
	codec, err := secure.NewCodec(cfg.Crypto.SessionKey)
	if err != nil {
		log.Fatalf("Failed to initialize session encryption: %v", err)
	}

	// Create repositories and services
	sessionRepo := repository.NewSessionRepository(db, codec)
	chatRepo := repository.NewChatRepository(db)
	sessionService := service.NewSessionService(sessionRepo, chatRepo)

	// Market data
	financeClient := yahoo.NewFinanceClient()
	oracle := pricing.NewYahooOracle(financeClient, priceCacheTTL)

	// LLM routing and narration are optional; without an API key the
	// orchestrator falls back to keyword routing and deterministic text
	var router advisor.IntentRouter
	var narrator advisor.Narrator
	if cfg.OpenAI.APIKey != "" {
		completer := llm.NewOpenAIClient(cfg.OpenAI)
		router = llm.NewRouter(completer)
		narrator = llm.NewNarrator(completer)
	} else {
		log.Println("OPENAI_API_KEY not set; using keyword routing and canned narration")
	}

	orchestrator := advisor.New(sessionService, oracle, router, narrator, cfg.Advisor)

	// Metrics
	collector, err := metrics.NewHTTPCollector()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Background price cache warmer
	sched := scheduler.New()
	warmJob := scheduler.NewWarmPricesJob(sessionService, oracle, warmJobTimeout)
	if err := sched.AddJob(warmJobSchedule, warmJob); err != nil {
		log.Fatalf("Failed to register warm job: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Create router
	handler := api.NewRouter(sessionService, orchestrator, oracle, db, collector, cfg)

	// Create HTTP server. The write timeout is generous because the chat
	// stream holds the response open across several external calls.
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
