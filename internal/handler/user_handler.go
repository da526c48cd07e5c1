package handler

import (
	"net/http"
	"strconv"

	"paper-analyzer/internal/domain"
	"paper-analyzer/internal/service"
	apperrors "paper-analyzer/pkg/errors"
)

// UserHandler serves the authenticated user's history and analytics.
type UserHandler struct {
	analysisService *service.AnalysisService
	logger          domain.Logger
}

func NewUserHandler(analysisService *service.AnalysisService, logger domain.Logger) *UserHandler {
	return &UserHandler{analysisService: analysisService, logger: logger}
}

type profileResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Profile returns the caller as seen by the auth middleware.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, _, ok := requestUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{ID: user.ID, Email: user.Email})
}

// History lists stored analyses, newest first. ?limit= defaults to 20.
func (h *UserHandler) History(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requestUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeAppError(w, h.logger, apperrors.NewValidationError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	records, err := h.analysisService.History(r.Context(), user.ID, limit, token)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *UserHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requestUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	analytics, err := h.analysisService.Analytics(r.Context(), user.ID, token)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}
