package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paper-analyzer/internal/config"
	"paper-analyzer/internal/domain"
	"paper-analyzer/internal/handler"

	"github.com/joho/godotenv"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg := config.NewConfig()
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, cfg)
	stop()
	if err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}

// run serves the API until ctx is done or the listener fails. Resources held
// by the container are released before it returns.
func run(ctx context.Context, cfg domain.Config) error {
	// Wiring
	container, err := config.NewContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise application: %w", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			container.Logger.Error("Failed to release resources", err)
		}
	}()

	maxFileSize := cfg.GetMaxFileSize()
	handlers := handler.Handlers{
		Files:    handler.NewFileHandler(container.AnalysisService, container.Logger, maxFileSize),
		Analysis: handler.NewAnalysisHandler(container.AnalysisService, container.Logger, maxFileSize),
		Reviews:  handler.NewReviewHandler(container.ReviewService, container.AnalysisService, container.Logger, maxFileSize),
		Users:    handler.NewUserHandler(container.AnalysisService, container.Logger),
	}
	authMiddleware := handler.NewAuthMiddleware(container.AuthService, container.Logger)

	router := handler.NewRouter(handlers, authMiddleware.Middleware, cfg.GetAllowedOrigins(), container.Logger)

	server := &http.Server{
		Addr:              ":" + cfg.GetServerPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		container.Logger.Info("Server listening",
			"address", server.Addr,
			"auth", container.AuthService.Enabled(),
			"review", container.ReviewService.Enabled(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Graceful shutdown
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			container.Logger.Error("Server failed to start", err)
			return fmt.Errorf("server failed: %w", err)
		}
	}

	container.Logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Graceful shutdown failed", err)
		_ = server.Close()
	}

	container.Logger.Info("Server exited")
	return nil
}
