package handler

import (
	"encoding/json"
	"net/http"

	"paper-analyzer/internal/domain"
	"paper-analyzer/internal/service"
	apperrors "paper-analyzer/pkg/errors"
)

// ReviewHandler serves the LLM review endpoints. Each takes a multipart
// "file"; check-references also takes "references", a JSON array of the
// cited works' text. appraise answers with a structured Appraisal.
type ReviewHandler struct {
	reviewService   *service.ReviewService
	analysisService *service.AnalysisService
	logger          domain.Logger
	maxFileSize     int64
}

func NewReviewHandler(reviewService *service.ReviewService, analysisService *service.AnalysisService, logger domain.Logger, maxFileSize int64) *ReviewHandler {
	return &ReviewHandler{
		reviewService:   reviewService,
		analysisService: analysisService,
		logger:          logger,
		maxFileSize:     maxFileSize,
	}
}

func (h *ReviewHandler) Review(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, domain.ReviewArticle)
}

func (h *ReviewHandler) ValidateStatistics(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, domain.ReviewStatistics)
}

func (h *ReviewHandler) CheckReferences(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, domain.ReviewReferences)
}

func (h *ReviewHandler) Appraise(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, domain.ReviewAppraisal)
}

func (h *ReviewHandler) review(w http.ResponseWriter, r *http.Request, kind domain.ReviewKind) {
	if !h.reviewService.Enabled() {
		writeAppError(w, h.logger, apperrors.NewUnavailableError("Review service not configured"))
		return
	}

	upload, err := readUpload(w, r, h.analysisService, h.maxFileSize)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	var references []string
	if kind == domain.ReviewReferences {
		raw := r.FormValue("references")
		if raw == "" {
			writeAppError(w, h.logger, apperrors.NewValidationError("References are required"))
			return
		}
		if err := json.Unmarshal([]byte(raw), &references); err != nil {
			writeAppError(w, h.logger, apperrors.NewValidationError("References must be a JSON array of strings", err.Error()))
			return
		}
	}

	res, err := h.reviewService.Review(r.Context(), kind, upload, references)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
