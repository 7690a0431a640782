// Patrimonio - family portfolio dashboard API
// Entry point for the server
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ravila/patrimonio/internal/config"
	"github.com/ravila/patrimonio/internal/handlers"
	"github.com/ravila/patrimonio/internal/jobs"
	"github.com/ravila/patrimonio/internal/middleware"
	"github.com/ravila/patrimonio/internal/services/advisor"
	"github.com/ravila/patrimonio/internal/services/marketdata"
	"github.com/ravila/patrimonio/internal/services/performance"
	"github.com/ravila/patrimonio/internal/services/risk"
	"github.com/ravila/patrimonio/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := storage.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	positionRepo := storage.NewPositionRepository(db)
	profileRepo := storage.NewProfileRepository(db)

	// Seed positions on first run
	if cfg.SeedFile != "" {
		if _, err := os.Stat(cfg.SeedFile); err == nil {
			if err := positionRepo.SeedFromFile(cfg.SeedFile); err != nil {
				log.Printf("WARN: failed to seed positions: %v", err)
			}
		}
	}

	// Snapshot store: Redis when reachable, memory otherwise
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	snapshotStore := storage.NewSnapshotStore(ctx, cfg.RedisAddr)
	cancel()

	// Initialize services
	marketService := marketdata.NewService(marketdata.Config{
		Provider:          marketdata.Provider(cfg.MarketProvider),
		CacheTTL:          cfg.QuoteCacheTTL,
		FallbackEURPerUSD: cfg.FallbackEURPerUSD,
	})

	riskService := risk.NewDefaultService()

	fetcher := performance.NewFetcher(marketService, 0, 0)
	performanceService := performance.NewService(snapshotStore, fetcher, marketService)

	advisorConfig := advisor.DefaultConfig()
	advisorConfig.APIKey = cfg.OpenAIAPIKey
	advisorService := advisor.NewService(advisorConfig)

	// Initialize handlers
	h := handlers.New(
		cfg,
		positionRepo,
		profileRepo,
		snapshotStore,
		riskService,
		performanceService,
		marketService,
		advisorService,
	)

	// Setup routes
	mux := http.NewServeMux()
	h.Routes(mux)

	// Daily snapshot job
	if cfg.SnapshotEnabled {
		snapshotter := jobs.NewSnapshotter(positionRepo, profileRepo, snapshotStore, marketService)
		if err := snapshotter.Start(cfg.SnapshotCron); err != nil {
			log.Fatalf("Failed to schedule snapshot job: %v", err)
		}
		defer snapshotter.Stop()
	}

	// Apply global middleware
	handler := middleware.Chain(
		mux,
		middleware.Recover,
		middleware.SecurityHeaders,
		middleware.CORS(cfg.CORSOrigin),
		middleware.Logger,
	)

	// Start server
	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Patrimonio server starting on http://localhost%s", addr)
		log.Printf("Environment: %s", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
