package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm/logger"

	"github.com/x86txt/portfolio-sre-agent/internal/cache"
	"github.com/x86txt/portfolio-sre-agent/internal/config"
	"github.com/x86txt/portfolio-sre-agent/internal/database"
	"github.com/x86txt/portfolio-sre-agent/internal/events"
	"github.com/x86txt/portfolio-sre-agent/internal/handlers"
	"github.com/x86txt/portfolio-sre-agent/internal/llm"
	"github.com/x86txt/portfolio-sre-agent/internal/middleware"
	"github.com/x86txt/portfolio-sre-agent/internal/notify"
	"github.com/x86txt/portfolio-sre-agent/internal/ratelimit"
	"github.com/x86txt/portfolio-sre-agent/internal/triage"
	"github.com/x86txt/portfolio-sre-agent/internal/triage/normalize"
	"github.com/x86txt/portfolio-sre-agent/internal/triage/store"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is fine if using environment variables): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting aiTriage...")

	// JWT authentication is enforced whenever an admin password is set.
	authEnabled := cfg.AdminPassword != ""
	passwordHash := ""
	if authEnabled {
		passwordHash, err = middleware.HashPassword(cfg.AdminPassword)
		if err != nil {
			log.Fatalf("Failed to hash admin password: %v", err)
		}
		log.Printf("JWT authentication enabled for user: %s", cfg.AdminUsername)
	} else {
		log.Printf("ADMIN_PASSWORD not set, running without authentication")
	}

	jwtAuth := middleware.NewJWTAuthMiddleware(&middleware.JWTAuthConfig{
		Enabled:           authEnabled,
		AdminUsername:     cfg.AdminUsername,
		AdminPasswordHash: passwordHash,
		JWTSecret:         cfg.JWTSecret,
		JWTExpiryHours:    cfg.JWTExpiryHours,
		SkipPaths: []string{
			"/health",
			"/webhook/*",
			"/auth/login",
		},
	})

	// Durable incident archive.
	if err := database.Connect(cfg.DatabaseURL, logger.Warn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	log.Printf("Database connection established")

	archive := database.NewArchive(database.GetDB())

	// In-memory incident store, re-hydrated with open incidents so the
	// correlation window survives a restart.
	memStore := store.NewMemoryStore()
	if open, err := archive.LoadOpen(); err != nil {
		log.Printf("Warning: Failed to load open incidents from archive: %v", err)
	} else {
		for _, inc := range open {
			memStore.Upsert(inc)
		}
		log.Printf("Restored %d open incidents from archive", len(open))
	}

	engine := triage.NewEngine(memStore, archive, cfg.Triage())
	normalizer := normalize.NewNormalizer()
	bus := events.NewBus()

	reportCache := cache.New(cache.DefaultTTL, 5*time.Minute)
	defer reportCache.Stop()

	notifier := notify.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackChannel)
	if notifier != nil {
		log.Printf("Slack escalation notifications enabled for channel %s", cfg.SlackChannel)
	}

	// Keep the outer surfaces in sync with every committed incident update.
	engine.SetUpdateHook(func(incident *triage.Incident, previousImpact triage.ImpactLevel) {
		reportCache.InvalidateIncident(incident.ID)
		bus.Publish(events.EventIncidentUpdated, incident.Summarize())
		notifier.NotifyIfEscalated(incident, previousImpact)
	})

	mode, ok := llm.ParseMode(cfg.LLMMode)
	if !ok {
		log.Fatalf("Unknown LLM_MODE: %q", cfg.LLMMode)
	}
	writer, err := llm.ForMode(mode, llm.Config{
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIModel:     cfg.OpenAIModel,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		AnthropicModel:  cfg.AnthropicModel,
	})
	if err != nil {
		log.Fatalf("Failed to configure report writer: %v", err)
	}
	if writer != nil {
		log.Printf("Generative reports enabled via %s", writer.Model())
	} else {
		log.Printf("Generative reports disabled, serving deterministic reports")
	}

	reportLimiter := ratelimit.NewPerHour(cfg.ReportRatePerHour)

	mux := http.NewServeMux()
	handlers.NewHTTPHandler().SetupRoutes(mux)
	handlers.NewAuthHandler(jwtAuth).SetupRoutes(mux)
	handlers.NewIngestHandler(engine, normalizer, bus).SetupRoutes(mux)
	handlers.NewIncidentHandler(memStore, engine).SetupRoutes(mux)
	handlers.NewArchiveHandler(archive).SetupRoutes(mux)
	handlers.NewReportHandler(memStore, writer, reportCache, reportLimiter).SetupRoutes(mux)
	handlers.NewScenarioHandler(engine, normalizer, bus).SetupRoutes(mux)
	handlers.NewStreamHandler(bus).SetupRoutes(mux)

	// CORS outermost, then request IDs, then JWT authentication.
	corsMiddleware := middleware.NewCORSMiddleware()
	handler := corsMiddleware.Wrap(middleware.RequestIDMiddleware(jwtAuth.Wrap(mux)))

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: handler,
	}

	go func() {
		log.Printf("Starting HTTP server on port %d", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	log.Printf("Alert webhook endpoint: http://localhost:%d/webhook/alert/{provider}", cfg.HTTPPort)
	log.Printf("Health check endpoint: http://localhost:%d/health", cfg.HTTPPort)
	log.Printf("API base URL: http://localhost:%d/api", cfg.HTTPPort)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Received shutdown signal, cleaning up...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	if err := database.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	log.Println("Shutdown complete")
}
