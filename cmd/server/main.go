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

	"bifrost-backend/internal/config"
	"bifrost-backend/internal/database"
	"bifrost-backend/internal/gateway"
	"bifrost-backend/internal/handlers"
	"bifrost-backend/internal/repository"
	"bifrost-backend/internal/router"
	"bifrost-backend/internal/search"
)

func main() {
	log.Println("🚀 Starting Bifrost Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	conversationRepo := repository.NewConversationRepo(pool)
	configRepo := repository.NewConfigRepo(pool)

	// ──── Step 4: Initialize Model Gateway & Search ────
	modelGateway := gateway.New(cfg)
	searchService := search.NewService(cfg.MaxSearchResults, modelGateway)
	log.Printf("✓ Model gateway initialized (default provider: %s)", cfg.ModelProvider)

	// ──── Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(conversationRepo, modelGateway, searchService, cfg.ModelProvider)
	conversationHandler := handlers.NewConversationHandler(conversationRepo)
	configHandler := handlers.NewConfigHandler(configRepo)
	healthHandler := handlers.NewHealthHandler(modelGateway, cfg.ModelProvider)

	// ──── Step 5: Start HTTP Server ────
	r := router.New(
		chatHandler,
		conversationHandler,
		configHandler,
		healthHandler,
		cfg.FrontendURL,
		cfg.UIDistPath,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Bifrost Backend ready on http://localhost:%s", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
