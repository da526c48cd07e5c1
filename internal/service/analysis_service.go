package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"paper-analyzer/internal/domain"
	"paper-analyzer/internal/extract"
	"paper-analyzer/internal/metadata"
	apperrors "paper-analyzer/pkg/errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Upload is a file received from a client.
type Upload struct {
	Name     string
	MimeType string
	Data     []byte
}

// AnalysisService runs the upload -> extract -> analyze -> persist pipeline
// and serves stored analyses.
type AnalysisService struct {
	extractor   domain.TextExtractor
	analyzer    domain.ContentAnalyzer
	resolver    domain.MetadataResolver
	repo        domain.AnalysisRepository
	storage     domain.StorageService
	logger      domain.Logger
	maxFileSize int64
	now         func() time.Time
}

// NewAnalysisService creates the service. resolver and storage may be nil:
// metadata lookup and file storage are then skipped.
func NewAnalysisService(
	extractor domain.TextExtractor,
	analyzer domain.ContentAnalyzer,
	resolver domain.MetadataResolver,
	repo domain.AnalysisRepository,
	storage domain.StorageService,
	logger domain.Logger,
	maxFileSize int64,
) *AnalysisService {
	return &AnalysisService{
		extractor:   extractor,
		analyzer:    analyzer,
		resolver:    resolver,
		repo:        repo,
		storage:     storage,
		logger:      logger,
		maxFileSize: maxFileSize,
		now:         time.Now,
	}
}

// ValidateFile checks the size and type of an upload before it is read.
func (s *AnalysisService) ValidateFile(name, mimeType string, size int64) error {
	if size <= 0 {
		return apperrors.NewValidationError("File is empty")
	}
	if s.maxFileSize > 0 && size > s.maxFileSize {
		appErr := apperrors.NewValidationError("File too large",
			fmt.Sprintf("maximum size is %d MB", s.maxFileSize/(1024*1024)))
		appErr.Cause = domain.ErrFileTooLarge
		return appErr
	}
	if !extract.ValidateFileType(mimeType, name) {
		return apperrors.NewValidationError("Unsupported file type. Please upload a PDF, DOCX or text file.")
	}
	return nil
}

// ExtractText returns the text and embedded metadata of an upload.
func (s *AnalysisService) ExtractText(ctx context.Context, upload Upload) (*domain.ExtractedDocument, error) {
	if err := s.ValidateFile(upload.Name, upload.MimeType, int64(len(upload.Data))); err != nil {
		return nil, err
	}
	doc, err := s.extractor.Extract(ctx, upload.Data, upload.Name, upload.MimeType)
	if err != nil {
		return nil, mapExtractError(err)
	}
	return doc, nil
}

// AnalyzeText analyzes raw text without storing anything.
func (s *AnalysisService) AnalyzeText(ctx context.Context, text string) (*domain.ContentAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("Text is required")
	}
	res, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to analyze content", err)
	}
	return res, nil
}

// ResolveMetadata looks up bibliographic metadata for the identifiers in
// text or given in hint.
func (s *AnalysisService) ResolveMetadata(ctx context.Context, text string, hint domain.Identifiers) (*domain.ArticleMetadata, error) {
	if strings.TrimSpace(text) == "" && hint.Empty() {
		return nil, apperrors.NewValidationError("Text or an identifier is required")
	}
	if s.resolver == nil {
		return nil, apperrors.NewUnavailableError("Metadata lookup is not configured")
	}
	meta, err := s.resolver.Resolve(ctx, text, hint)
	switch {
	case err == nil:
		return meta, nil
	case errors.Is(err, domain.ErrNoIdentifiers):
		return nil, apperrors.NewValidationError("No DOI, PMID or title found in text")
	case errors.Is(err, domain.ErrMetadataNotFound):
		s.logger.Warn("Metadata lookup failed", "error", err)
		notFound := apperrors.NewNotFoundError("Failed to retrieve article metadata from all available sources")
		notFound.Cause = err
		return nil, notFound
	default:
		return nil, apperrors.NewNetworkError("Metadata lookup failed", err)
	}
}

// MetadataHint returns the embedded document title as a lookup hint. Titles
// that are only the file name are dropped.
func MetadataHint(doc *domain.ExtractedDocument, fileName string) domain.Identifiers {
	title := strings.TrimSpace(doc.Metadata.Title)
	base := filepath.Base(fileName)
	if title == "" || strings.EqualFold(title, strings.TrimSuffix(base, filepath.Ext(base))) {
		return domain.Identifiers{}
	}
	return domain.Identifiers{Title: title}
}

// GuessTitle returns the title found in the opening lines of text, or "".
func (s *AnalysisService) GuessTitle(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewValidationError("Text is required")
	}
	return metadata.GuessTitle(text), nil
}

// AnalyzeUpload extracts and analyzes an upload, resolves its metadata,
// stores the original file and persists the record. Metadata and storage
// failures are logged and do not fail the upload.
func (s *AnalysisService) AnalyzeUpload(ctx context.Context, user *domain.SupabaseUser, token string, upload Upload) (*domain.AnalysisRecord, error) {
	if user == nil {
		return nil, apperrors.NewUnauthorizedError("User not authenticated")
	}
	doc, err := s.ExtractText(ctx, upload)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Text) == "" {
		return nil, apperrors.NewProcessingError("No text could be extracted from the file", domain.ErrNoTextExtracted)
	}

	record := &domain.AnalysisRecord{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		FileName:  upload.Name,
		MimeType:  upload.MimeType,
		FileSize:  int64(len(upload.Data)),
		PageCount: doc.Metadata.PageCount,
		Document:  doc.Metadata,
		CreatedAt: s.now().UTC(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.analyzer.Analyze(gctx, doc.Text)
		if err != nil {
			return err
		}
		record.Analysis = res
		return nil
	})
	if s.resolver != nil {
		g.Go(func() error {
			meta, err := s.resolver.Resolve(gctx, doc.Text, MetadataHint(doc, upload.Name))
			if err != nil {
				s.logger.Warn("Metadata not resolved", "id", record.ID, "error", err)
				return nil
			}
			record.Metadata = meta
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to analyze upload", err, "id", record.ID)
		return nil, apperrors.NewInternalError("Failed to analyze content", err)
	}

	if s.storage != nil {
		path := fmt.Sprintf("%s/%s%s", user.ID, record.ID, strings.ToLower(filepath.Ext(upload.Name)))
		if err := s.storage.Upload(ctx, path, bytes.NewReader(upload.Data), upload.MimeType, token); err != nil {
			s.logger.Error("Failed to store original file", err, "id", record.ID, "path", path)
		} else {
			record.FilePath = path
		}
	}

	if err := s.repo.Create(ctx, record, token); err != nil {
		s.logger.Error("Failed to save analysis", err, "id", record.ID)
		return nil, apperrors.NewInternalError("Failed to save analysis", err)
	}

	s.logger.Info("Analysis stored",
		"id", record.ID,
		"user_id", user.ID,
		"pages", record.PageCount,
		"metadata", record.Metadata != nil,
	)
	return record, nil
}

// History lists the user's analyses, newest first. limit is clamped to
// [1, MaxHistoryLimit]; 0 selects DefaultHistoryLimit.
func (s *AnalysisService) History(ctx context.Context, userID string, limit int, token string) ([]*domain.AnalysisRecord, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	records, err := s.repo.ListByUserID(ctx, userID, limit, token)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load history", err)
	}
	if records == nil {
		records = []*domain.AnalysisRecord{}
	}
	return records, nil
}

// Get returns a stored analysis owned by userID.
func (s *AnalysisService) Get(ctx context.Context, userID, id, token string) (*domain.AnalysisRecord, error) {
	record, err := s.repo.GetByID(ctx, id, token)
	if err != nil {
		if errors.Is(err, domain.ErrAnalysisNotFound) {
			return nil, apperrors.NewNotFoundError("Analysis not found")
		}
		return nil, apperrors.NewInternalError("Failed to load analysis", err)
	}
	if record.UserID != userID {
		appErr := apperrors.NewForbiddenError("Access denied")
		appErr.Cause = domain.ErrAccessDenied
		return nil, appErr
	}
	return record, nil
}

// Delete removes an analysis. Only its owner may delete it.
func (s *AnalysisService) Delete(ctx context.Context, userID, id, token string) error {
	if _, err := s.Get(ctx, userID, id, token); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, token); err != nil {
		return apperrors.NewInternalError("Failed to delete analysis", err)
	}
	s.logger.Info("Analysis deleted", "id", id, "user_id", userID)
	return nil
}

// Analytics summarises every stored analysis of the user.
func (s *AnalysisService) Analytics(ctx context.Context, userID, token string) (domain.UserAnalytics, error) {
	records, err := s.repo.ListByUserID(ctx, userID, 0, token)
	if err != nil {
		return domain.UserAnalytics{}, apperrors.NewInternalError("Failed to load analytics", err)
	}
	return domain.SummariseRecords(records), nil
}

func mapExtractError(err error) error {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return apperrors.NewValidationError("Unsupported file type. Please upload a PDF, DOCX or text file.")
	case errors.Is(err, domain.ErrEmptyFile):
		return apperrors.NewValidationError("File is empty")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewProcessingError("Extraction timed out", err)
	default:
		return apperrors.NewProcessingError("Failed to process file", err)
	}
}
