package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"paper-analyzer/internal/domain"
	apperrors "paper-analyzer/pkg/errors"
)

// ReviewService extracts an uploaded paper and asks the LLM reviewer about it.
type ReviewService struct {
	analyses *AnalysisService
	reviewer domain.Reviewer
	logger   domain.Logger
}

// NewReviewService creates the service. A nil reviewer makes every review
// return an unavailable error.
func NewReviewService(analyses *AnalysisService, reviewer domain.Reviewer, logger domain.Logger) *ReviewService {
	return &ReviewService{analyses: analyses, reviewer: reviewer, logger: logger}
}

// Enabled reports whether an LLM reviewer is configured.
func (s *ReviewService) Enabled() bool {
	return s.reviewer != nil
}

// Review extracts the upload's text and runs the review of the given kind.
// references are only used by domain.ReviewReferences.
func (s *ReviewService) Review(ctx context.Context, kind domain.ReviewKind, upload Upload, references []string) (*domain.ReviewResult, error) {
	if s.reviewer == nil {
		return nil, apperrors.NewUnavailableError("Review service not configured")
	}

	doc, err := s.analyses.ExtractText(ctx, upload)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Text) == "" {
		return nil, apperrors.NewProcessingError("No text could be extracted from the file", domain.ErrNoTextExtracted)
	}

	req := domain.ReviewRequest{Kind: kind, Text: doc.Text, References: references}
	if kind == domain.ReviewAppraisal {
		req.Context = s.paperContext(ctx, doc, upload.Name)
	}
	res, err := s.reviewer.Review(ctx, req)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return nil, apperrors.NewValidationError("Invalid review request", verr.Error())
		}
		s.logger.Error("Review failed", err, "kind", kind, "file", upload.Name)
		return nil, apperrors.NewNetworkError("Review generation failed", err)
	}

	s.logger.Info("Review generated", "kind", kind, "file", upload.Name, "truncated", res.Truncated)
	return res, nil
}

// paperContext describes the paper by title, journal and year for the
// appraisal prompt. Bibliographic metadata is looked up when a resolver is
// configured; otherwise the embedded document title is used.
func (s *ReviewService) paperContext(ctx context.Context, doc *domain.ExtractedDocument, fileName string) string {
	hint := MetadataHint(doc, fileName)
	title := hint.Title
	var journal string
	var year int
	if s.analyses.resolver != nil {
		meta, err := s.analyses.ResolveMetadata(ctx, doc.Text, hint)
		if err != nil {
			s.logger.Debug("No metadata for appraisal", "file", fileName, "error", err)
		} else {
			title, journal, year = firstNonBlank(meta.Title, title), meta.Journal, meta.PublicationYear
		}
	}

	var lines []string
	if title != "" {
		lines = append(lines, "Paper Title: "+title)
	}
	if journal != "" {
		lines = append(lines, "Journal: "+journal)
	}
	if year > 0 {
		lines = append(lines, fmt.Sprintf("Year: %d", year))
	}
	return strings.Join(lines, "\n")
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
