package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"paper-analyzer/internal/domain"

	"github.com/go-playground/validator/v10"
)

const (
	defaultMaxFileSize   = 10 * 1024 * 1024 // 10MB
	defaultReviewModel   = "gemini-2.0-flash-001"
	defaultReviewChars   = 25000
	defaultContactEmail  = "support@example.com"
	defaultStorageBucket = "papers"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort     string   `validate:"required,numeric"`
	MaxFileSize    int64    `validate:"gt=0"`
	LogLevel       string   `validate:"oneof=debug info warn warning error"`
	AllowedOrigins []string `validate:"dive,required"`

	SupabaseURL   string `validate:"omitempty,url"`
	SupabaseKey   string `validate:"required_with=SupabaseURL"`
	StorageBucket string `validate:"required"`
	DatabasePath  string `validate:"required"`

	PubMedAPIKey           string
	SemanticScholarAPIKey  string
	ContactEmail           string `validate:"required,email"`
	MetadataTimeoutSeconds int    `validate:"gt=0,lte=120"`

	GCPProjectID   string
	GCPLocation    string `validate:"required_with=GCPProjectID"`
	ReviewModel    string `validate:"required"`
	ReviewMaxChars int    `validate:"gt=0"`
}

// NewConfig creates a new configuration instance from the environment.
func NewConfig() domain.Config {
	return &AppConfig{
		// PaaS platforms provide the listening port via PORT.
		ServerPort:     getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "5001")),
		MaxFileSize:    getEnvInt64OrDefault("MAX_FILE_SIZE", defaultMaxFileSize),
		LogLevel:       strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		AllowedOrigins: getEnvListOrDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		SupabaseURL:   getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:   getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		StorageBucket: getEnvOrDefault("SUPABASE_BUCKET", defaultStorageBucket),
		DatabasePath:  getEnvOrDefault("DATABASE_PATH", "./data/analyses.db"),

		PubMedAPIKey:           getEnvOrDefault("PUBMED_API_KEY", ""),
		SemanticScholarAPIKey:  getEnvOrDefault("SEMANTIC_SCHOLAR_API_KEY", ""),
		ContactEmail:           getEnvOrDefault("CONTACT_EMAIL", defaultContactEmail),
		MetadataTimeoutSeconds: getEnvIntOrDefault("METADATA_TIMEOUT_SECONDS", 15),

		GCPProjectID:   getEnvOrDefault("GCP_PROJECT_ID", ""),
		GCPLocation:    getEnvOrDefault("GCP_LOCATION", "us-central1"),
		ReviewModel:    getEnvOrDefault("REVIEW_MODEL", defaultReviewModel),
		ReviewMaxChars: getEnvIntOrDefault("REVIEW_MAX_CHARS", defaultReviewChars),
	}
}

// Validate checks the configuration for inconsistent or missing values.
func Validate(cfg domain.Config) error {
	appCfg, ok := cfg.(*AppConfig)
	if !ok {
		return nil
	}
	if err := validator.New().Struct(appCfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetMaxFileSize returns the maximum allowed upload size in bytes
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetAllowedOrigins returns the CORS origins
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetStorageBucket returns the Supabase Storage bucket for original uploads
func (c *AppConfig) GetStorageBucket() string {
	return c.StorageBucket
}

// GetDatabasePath returns the SQLite path used when Supabase is not configured
func (c *AppConfig) GetDatabasePath() string {
	return c.DatabasePath
}

func (c *AppConfig) GetPubMedAPIKey() string {
	return c.PubMedAPIKey
}

func (c *AppConfig) GetSemanticScholarAPIKey() string {
	return c.SemanticScholarAPIKey
}

// GetContactEmail is sent in the User-Agent to Crossref's polite pool.
func (c *AppConfig) GetContactEmail() string {
	return c.ContactEmail
}

func (c *AppConfig) GetMetadataTimeoutSeconds() int {
	return c.MetadataTimeoutSeconds
}

func (c *AppConfig) GetGCPProjectID() string {
	return c.GCPProjectID
}

func (c *AppConfig) GetGCPLocation() string {
	return c.GCPLocation
}

func (c *AppConfig) GetReviewModel() string {
	return c.ReviewModel
}

func (c *AppConfig) GetReviewMaxChars() int {
	return c.ReviewMaxChars
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
