package handler

import (
	"net/http"

	"paper-analyzer/internal/domain"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Files    *FileHandler
	Analysis *AnalysisHandler
	Reviews  *ReviewHandler
	Users    *UserHandler
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(
	h Handlers,
	authMiddleware func(http.Handler) http.Handler,
	allowedOrigins []string,
	logger domain.Logger,
) http.Handler {
	router := mux.NewRouter()
	router.Use(RequestLogger(logger))

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"paper-analyzer"}`))
	}).Methods(http.MethodGet)

	protected := router.PathPrefix("/api/v1").Subrouter()
	protected.Use(authMiddleware)

	protected.HandleFunc("/files/validate", h.Files.Validate).Methods(http.MethodPost)
	protected.HandleFunc("/files/extract-text", h.Files.ExtractText).Methods(http.MethodPost)

	protected.HandleFunc("/analysis/upload", h.Analysis.Upload).Methods(http.MethodPost)
	protected.HandleFunc("/analysis/text", h.Analysis.AnalyzeText).Methods(http.MethodPost)
	protected.HandleFunc("/analysis/metadata", h.Analysis.Metadata).Methods(http.MethodPost)
	protected.HandleFunc("/analysis/title", h.Analysis.Title).Methods(http.MethodPost)
	protected.HandleFunc("/analysis/review", h.Reviews.Review).Methods(http.MethodPost)
	protected.HandleFunc("/analysis/validate-statistics", h.Reviews.ValidateStatistics).Methods(http.MethodPost)
	protected.HandleFunc("/analysis/check-references", h.Reviews.CheckReferences).Methods(http.MethodPost)
	protected.HandleFunc("/analysis/appraise", h.Reviews.Appraise).Methods(http.MethodPost)
	protected.HandleFunc("/analysis/{id}", h.Analysis.Get).Methods(http.MethodGet)
	protected.HandleFunc("/analysis/{id}", h.Analysis.Delete).Methods(http.MethodDelete)

	protected.HandleFunc("/user/profile", h.Users.Profile).Methods(http.MethodGet)
	protected.HandleFunc("/user/history", h.Users.History).Methods(http.MethodGet)
	protected.HandleFunc("/user/analytics", h.Users.Analytics).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
