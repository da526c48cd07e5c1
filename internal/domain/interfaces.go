package domain

import (
	"context"
	"io"
)

// TextExtractor turns an uploaded file into text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, filename, mimeType string) (*ExtractedDocument, error)
	SupportsFormat(format DocumentFormat) bool
}

// ContentAnalyzer scores the structure, clarity and quality of a paper's text.
type ContentAnalyzer interface {
	Analyze(ctx context.Context, text string) (*ContentAnalysis, error)
}

// MetadataProvider resolves bibliographic metadata from one registry.
type MetadataProvider interface {
	Name() MetadataSource
	Supports(ids Identifiers) bool
	Fetch(ctx context.Context, ids Identifiers) (*ArticleMetadata, error)
}

// MetadataResolver finds identifiers in text and resolves them through providers.
type MetadataResolver interface {
	// Resolve looks the paper up by the identifiers in text. Non-empty
	// fields of hint override what is found in the text.
	Resolve(ctx context.Context, text string, hint Identifiers) (*ArticleMetadata, error)
}

// Reviewer produces an LLM review of a paper.
type Reviewer interface {
	Review(ctx context.Context, req ReviewRequest) (*ReviewResult, error)
}

// AnalysisRepository persists analysis records.
type AnalysisRepository interface {
	Create(ctx context.Context, record *AnalysisRecord, token string) error
	GetByID(ctx context.Context, id string, token string) (*AnalysisRecord, error)
	ListByUserID(ctx context.Context, userID string, limit int, token string) ([]*AnalysisRecord, error)
	Delete(ctx context.Context, id string, token string) error
}

// StorageService stores original uploads.
type StorageService interface {
	Upload(ctx context.Context, path string, file io.Reader, contentType string, token string) error
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetAllowedOrigins() []string

	GetSupabaseURL() string
	GetSupabaseKey() string
	GetStorageBucket() string
	GetDatabasePath() string

	GetPubMedAPIKey() string
	GetSemanticScholarAPIKey() string
	GetContactEmail() string
	GetMetadataTimeoutSeconds() int

	GetGCPProjectID() string
	GetGCPLocation() string
	GetReviewModel() string
	GetReviewMaxChars() int
}
