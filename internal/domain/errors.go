package domain

import "errors"

// Domain errors
var (
	ErrAnalysisNotFound     = errors.New("analysis not found")
	ErrAccessDenied         = errors.New("access denied")
	ErrInvalidToken         = errors.New("invalid token")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file too large")
	ErrEmptyFile            = errors.New("empty file")
	ErrNoTextExtracted      = errors.New("no text could be extracted")
	ErrNoIdentifiers        = errors.New("no DOI, PMID or title found")
	ErrMetadataNotFound     = errors.New("failed to retrieve article metadata from all available sources")
	ErrReviewNotConfigured  = errors.New("review service not configured")
	ErrStorageNotConfigured = errors.New("storage not configured")
	ErrInvalidModelOutput   = errors.New("model returned an invalid response")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
