package handler

import (
	"net/http"
	"strings"

	"paper-analyzer/internal/domain"
	"paper-analyzer/internal/service"
	apperrors "paper-analyzer/pkg/errors"

	"github.com/gorilla/mux"
)

// AnalysisHandler handles analysis-related HTTP requests
type AnalysisHandler struct {
	analysisService *service.AnalysisService
	logger          domain.Logger
	maxFileSize     int64
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisService *service.AnalysisService, logger domain.Logger, maxFileSize int64) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService, logger: logger, maxFileSize: maxFileSize}
}

type textRequest struct {
	Text string `json:"text"`
}

type metadataRequest struct {
	Text  string `json:"text"`
	Title string `json:"title"`
	DOI   string `json:"doi"`
	PMID  string `json:"pmid"`
}

// Upload analyzes an uploaded paper and stores the result.
func (h *AnalysisHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requestUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	upload, err := readUpload(w, r, h.analysisService, h.maxFileSize)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	record, err := h.analysisService.AnalyzeUpload(r.Context(), user, token, upload)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// AnalyzeText analyzes text posted as {"text": "..."} without storing it.
func (h *AnalysisHandler) AnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	res, err := h.analysisService.AnalyzeText(r.Context(), req.Text)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Metadata resolves bibliographic metadata for the DOI, PMID or title in
// the text. Identifiers given in the request take precedence.
func (h *AnalysisHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	var req metadataRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	hint := domain.Identifiers{
		DOI:   strings.TrimSpace(req.DOI),
		PMID:  strings.TrimSpace(req.PMID),
		Title: strings.TrimSpace(req.Title),
	}
	meta, err := h.analysisService.ResolveMetadata(r.Context(), req.Text, hint)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// Title returns the title found in the opening lines of the text.
func (h *AnalysisHandler) Title(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	title, err := h.analysisService.GuessTitle(req.Text)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"title": title})
}

func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requestUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	id := mux.Vars(r)["id"]
	if id == "" {
		writeAppError(w, h.logger, apperrors.NewValidationError("Analysis ID is required"))
		return
	}

	record, err := h.analysisService.Get(r.Context(), user.ID, id, token)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *AnalysisHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requestUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	id := mux.Vars(r)["id"]
	if id == "" {
		writeAppError(w, h.logger, apperrors.NewValidationError("Analysis ID is required"))
		return
	}

	if err := h.analysisService.Delete(r.Context(), user.ID, id, token); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func requestUser(r *http.Request) (*domain.SupabaseUser, string, bool) {
	user, ok := GetUserFromContext(r)
	if !ok || user == nil {
		return nil, "", false
	}
	token, _ := GetTokenFromContext(r)
	return user, token, true
}
