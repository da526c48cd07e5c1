// Package handler provides HTTP handlers for the API.
package handler

import (
	"net/http"

	"paper-analyzer/internal/domain"
	"paper-analyzer/internal/extract"
	"paper-analyzer/internal/service"
	apperrors "paper-analyzer/pkg/errors"
)

// FileHandler validates uploads and extracts their text without analysis.
type FileHandler struct {
	analysisService *service.AnalysisService
	logger          domain.Logger
	maxFileSize     int64
}

func NewFileHandler(analysisService *service.AnalysisService, logger domain.Logger, maxFileSize int64) *FileHandler {
	return &FileHandler{analysisService: analysisService, logger: logger, maxFileSize: maxFileSize}
}

type validateFileResponse struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message"`
}

// Validate reports whether the uploaded file would be accepted. A rejected
// file is a successful response with isValid false.
func (h *FileHandler) Validate(w http.ResponseWriter, r *http.Request) {
	file, header, err := openUpload(w, r, h.maxFileSize)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	file.Close()

	if err := h.analysisService.ValidateFile(uploadName(header), header.Header.Get("Content-Type"), header.Size); err != nil {
		writeJSON(w, http.StatusOK, validateFileResponse{IsValid: false, Message: apperrors.Message(err)})
		return
	}
	writeJSON(w, http.StatusOK, validateFileResponse{IsValid: true, Message: "File is valid"})
}

// ExtractText returns {text, metadata, num_pages} for the uploaded file.
func (h *FileHandler) ExtractText(w http.ResponseWriter, r *http.Request) {
	upload, err := readUpload(w, r, h.analysisService, h.maxFileSize)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	doc, err := h.analysisService.ExtractText(r.Context(), upload)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, extract.Result(doc))
}
