package config

import (
	"context"
	"errors"

	"paper-analyzer/internal/analysis"
	"paper-analyzer/internal/domain"
	"paper-analyzer/internal/extract"
	"paper-analyzer/internal/metadata"
	"paper-analyzer/internal/repository"
	"paper-analyzer/internal/review"
	"paper-analyzer/internal/service"
	"paper-analyzer/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config          domain.Config
	Logger          domain.Logger
	SupabaseClient  domain.SupabaseClient
	Repository      domain.AnalysisRepository
	AuthService     *service.AuthService
	AnalysisService *service.AnalysisService
	ReviewService   *service.ReviewService

	closers []func() error
}

// NewContainer wires the application. Supabase backs auth, storage and the
// analyses table when configured; otherwise records go to the local SQLite
// database and requests run as the local user. The reviewer is only wired
// when a GCP project is set.
func NewContainer(ctx context.Context, cfg domain.Config) (*Container, error) {
	appLogger := logger.NewLogger(cfg.GetLogLevel())
	c := &Container{Config: cfg, Logger: appLogger}

	supabaseClient := repository.NewSupabaseClient(cfg, appLogger)
	c.SupabaseClient = supabaseClient

	var storage domain.StorageService
	if supabaseClient.IsConfigured() {
		if err := supabaseClient.Initialize(); err != nil {
			return nil, err
		}
		c.Repository = repository.NewSupabaseAnalysisRepository(supabaseClient, logger.Component(appLogger, "repository"))
		storage = service.NewStorageService(cfg.GetSupabaseURL(), cfg.GetSupabaseKey(), cfg.GetStorageBucket())
	} else {
		appLogger.Warn("Supabase not configured; using local SQLite store without authentication",
			"path", cfg.GetDatabasePath())
		repo, err := repository.NewSQLiteAnalysisRepository(cfg.GetDatabasePath())
		if err != nil {
			return nil, err
		}
		c.Repository = repo
		c.closers = append(c.closers, repo.Close)
	}

	c.AuthService = service.NewAuthService(supabaseClient, appLogger)
	c.AnalysisService = service.NewAnalysisService(
		extract.NewExtractor(appLogger),
		analysis.NewAnalyzer(appLogger),
		metadata.NewDefaultResolver(cfg, logger.Component(appLogger, "metadata")),
		c.Repository,
		storage,
		appLogger,
		cfg.GetMaxFileSize(),
	)

	var reviewer domain.Reviewer
	vertex, err := review.NewVertexReviewer(ctx, cfg, logger.Component(appLogger, "review"))
	switch {
	case err == nil:
		reviewer = vertex
		c.closers = append(c.closers, vertex.Close)
	case errors.Is(err, domain.ErrReviewNotConfigured):
		appLogger.Info("Review service disabled; set GCP_PROJECT_ID to enable it")
	default:
		appLogger.Error("Review service unavailable", err)
	}
	c.ReviewService = service.NewReviewService(c.AnalysisService, reviewer, appLogger)

	return c, nil
}

// Close releases the database and the Vertex AI client.
func (c *Container) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}
