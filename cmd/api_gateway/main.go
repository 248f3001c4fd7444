package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/finflow-payment-approval/internal/api_gateway"
	"github.com/finflow-payment-approval/internal/api_gateway/service"
	"github.com/finflow-payment-approval/internal/config"
	"github.com/finflow-payment-approval/internal/data/mongo"
	"github.com/finflow-payment-approval/internal/data/postgres"
	"github.com/finflow-payment-approval/internal/domain/approval"
	"github.com/finflow-payment-approval/internal/logger"
	"github.com/finflow-payment-approval/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	paymentRepo := postgres.NewPaymentRepository(log, postgresDB)
	auditRepo := postgres.NewAuditRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	serviceRepo := postgres.NewServiceRepository(log, postgresDB)
	tokenResolver := postgres.NewTokenRepository(log, postgresDB)
	viewRepo := mongo.NewViewRepository(log, mongoDB.Database())

	// Initialize services
	chainResolver := approval.NewPolicyResolver(log, serviceRepo)
	paymentService := service.NewPaymentService(log, postgresDB, paymentRepo, auditRepo, viewRepo, chainResolver)
	approvalService, err := service.NewApprovalService(
		log, postgresDB, paymentRepo, auditRepo, outboxRepo, viewRepo, chainResolver, cfg.WorkerPool.Size,
	)
	if err != nil {
		log.Error("Failed to initialize approval service", "error", err)
		os.Exit(1)
	}

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, tokenResolver, paymentService, approvalService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Release the bulk approval worker pool
	approvalService.Shutdown()

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
