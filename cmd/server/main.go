package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"frontdesk/internal/config"
	"frontdesk/internal/db"
	"frontdesk/internal/jobs"
	"frontdesk/internal/metrics"
	"frontdesk/internal/server"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.Load()

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Preload seed answers from the optional YAML config
	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		log.Fatalf("Failed to load YAML config: %v", err)
	}
	if pairs := yamlCfg.SeedAnswerPairs(); len(pairs) > 0 {
		if err := database.SeedLearnedAnswers(ctx, pairs); err != nil {
			log.Fatalf("Failed to seed learned answers: %v", err)
		}
		log.Printf("Seeded %d learned answers", len(pairs))
	}

	// Register Prometheus collectors
	metrics.Init(database)

	// Initialize server and routes
	srv := server.New(cfg)
	srv.RegisterRoutes(database)

	// Background expiry sweeper
	sweepCtx, cancelSweep := context.WithCancel(ctx)
	defer cancelSweep()
	go jobs.NewSweeper(database, cfg.SweepInterval).Start(sweepCtx)

	// Start server
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()
	log.Printf("Server started on %s", cfg.ServerAddr)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancelSweep()
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
