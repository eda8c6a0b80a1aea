/**
 * @description
 * Main entry point for the Dhukuti API server. It wires configuration, the
 * Postgres pool, the repositories, the token managers and the HTTP router,
 * starts the outbox dispatcher that hands account emails to the message
 * broker, and shuts everything down gracefully on SIGINT/SIGTERM.
 */
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/bhupen98/dhukuti/internal/api"
	"github.com/bhupen98/dhukuti/internal/app"
	"github.com/bhupen98/dhukuti/internal/auth"
	"github.com/bhupen98/dhukuti/internal/config"
	"github.com/bhupen98/dhukuti/internal/store"
)

func main() {
	// Load .env file for local development. In production, env vars are set directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	// Establish database connection pool
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to parse database URL: %v\n", err)
	}
	dbConfig.MaxConns = 10
	dbConfig.MinConns = 2
	dbConfig.MaxConnLifetime = 30 * time.Minute
	dbConfig.MaxConnIdleTime = 5 * time.Minute
	// Disable prepared statement caching to prevent conflicts behind poolers
	dbConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer dbpool.Close()
	log.Println("Database connection established")

	// Set up repository and ensure required tables exist (idempotent)
	repo := store.NewRepository(dbpool)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	// Token managers
	jwtManager := auth.NewJWTManager(
		cfg.JWTSecret,
		time.Duration(cfg.AccessTokenTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTokenTTLHours)*time.Hour,
	)
	tokenManager := auth.NewActionTokenManager(
		cfg.ActionTokenSecret,
		time.Duration(cfg.ActionTokenTTLHours)*time.Hour,
	)

	// Application services
	groupService := app.NewGroupService(repo)
	accountService := app.NewAccountService(
		repo,
		tokenManager,
		jwtManager,
		cfg.PublicBaseURL,
		cfg.FrontendBaseURL,
		cfg.EmailVerifiedRedirect,
	)

	// Outbox dispatcher publishes queued account emails to RabbitMQ. It
	// connects lazily, so a down broker delays email but never registration.
	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	dispatcher := app.NewOutboxDispatcher(repo, cfg.RabbitMQURL)
	go dispatcher.Run(dispatcherCtx)
	log.Println("Outbox dispatcher started")

	// Set up router and handlers
	handler := api.NewHandler(groupService, accountService)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	stopDispatcher()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
